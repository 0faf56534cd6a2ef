package settlement

import (
	"context"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// Request is the outbound settlement shape handed to the persistence
// collaborator for PURCHASE and PICKUP transactions.
type Request struct {
	ClientID      string
	WalkIn        *WalkInIdentity
	Type          ledger.Type
	Items         []ledger.Item
	AmountPaid    pricing.Money
	Discount      pricing.Money
	PaymentMethod string
	Notes         string
	Reason        string
	// SnapshotBalance is the prior balance classification ran against. The
	// store compares it with the authoritative row and refuses the request
	// when another terminal settled in between.
	SnapshotBalance pricing.Money
}

// Submitter is the single external boundary of the settlement core. A submit
// call is atomic from this package's perspective: it either returns the
// confirmed transaction (with authoritative balances) or an error, with no
// partial effect.
type Submitter interface {
	Submit(ctx context.Context, req Request) (ledger.Transaction, error)
}

// Outcome is a settled draft: the classification plus the server-confirmed
// transaction that supersedes it.
type Outcome struct {
	Classified
	Transaction ledger.Transaction
}

// Settle classifies the draft and hands it to the submitter. Any submitter
// refusal comes back as a SettlementRejectedError with the cause intact; this
// package never retries and never mutates a cached balance on its own.
func Settle(ctx context.Context, d Draft, sub Submitter) (Outcome, error) {
	classified, err := Classify(d)
	if err != nil {
		return Outcome{Classified: classified}, err
	}

	req := Request{
		Type:            classified.Type,
		Items:           snapshotItems(d.Lines),
		AmountPaid:      d.AmountTendered,
		Discount:        classified.Summary.EffectiveDiscount,
		PaymentMethod:   classified.PaymentMethod,
		Notes:           d.Notes,
		Reason:          d.Reason,
		SnapshotBalance: classified.BalanceBefore,
	}
	if d.Mode == ModeWalkIn {
		req.WalkIn = d.WalkIn
	} else {
		req.ClientID = d.Client.ID
	}

	confirmed, err := sub.Submit(ctx, req)
	if err != nil {
		classified.State = StateRejected
		return Outcome{Classified: classified}, &common.SettlementRejectedError{Err: err}
	}
	classified.State = StateSettled
	return Outcome{Classified: classified, Transaction: confirmed}, nil
}

func snapshotItems(lines []pricing.PricedLine) []ledger.Item {
	items := make([]ledger.Item, 0, len(lines))
	for _, ln := range lines {
		items = append(items, ledger.Item{
			ProductID:   ln.ProductID,
			ProductName: ln.ProductName,
			Unit:        ln.Unit,
			Qty:         ln.Qty,
			UnitPrice:   ln.UnitPrice,
			Subtotal:    ln.Base,
		})
	}
	return items
}
