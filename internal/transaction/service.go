package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/events"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/obs"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
	"github.com/noah-isme/backend-bangunan/internal/repo"
	"github.com/noah-isme/backend-bangunan/internal/settlement"
)

// LineRequest is one cart line as submitted by a terminal. Unit price, name
// and unit are seeded from the catalog, never trusted from the client.
type LineRequest struct {
	ProductID    string `json:"productId" validate:"required"`
	Qty          int    `json:"quantity" validate:"gte=0"`
	Discount     int64  `json:"discount" validate:"gte=0"`
	DiscountType string `json:"discountType" validate:"omitempty,oneof=amount percent"`
}

// SettleRequest is the inbound payload for PURCHASE/PICKUP settlement.
// AmountPaid is kept raw: terminals send whatever the cashier typed and the
// engine sanitizes it to digits before interpreting minor units.
type SettleRequest struct {
	ClientID      string                     `json:"clientId"`
	WalkIn        *settlement.WalkInIdentity `json:"walkInClient"`
	Items         []LineRequest              `json:"items" validate:"dive"`
	AmountPaid    string                     `json:"amountPaid"`
	CartDiscount  int64                      `json:"discount" validate:"gte=0"`
	PaymentMethod string                     `json:"paymentMethod"`
	Reason        string                     `json:"reason"`
	Notes         string                     `json:"notes"`
}

// DepositRequest tops up a registered client's balance.
type DepositRequest struct {
	AmountPaid    string `json:"amountPaid" validate:"required"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
}

// ReturnSubmitRequest is the inbound payload for RETURN creation.
type ReturnSubmitRequest struct {
	ClientID       string              `json:"clientId" validate:"required"`
	ReferenceID    string              `json:"referenceTransactionId" validate:"required"`
	Items          []ledger.ReturnItem `json:"items" validate:"dive"`
	AmountReturned pricing.Money       `json:"actualAmountReturned" validate:"gte=0"`
	Reason         string              `json:"reason"`
}

// Preview is a classification result that has not been submitted.
type Preview struct {
	State         settlement.State `json:"state"`
	Type          ledger.Type      `json:"type"`
	Subtotal      pricing.Money    `json:"subtotal"`
	Discount      pricing.Money    `json:"discount"`
	Total         pricing.Money    `json:"total"`
	EffectivePaid pricing.Money    `json:"effectiveAmountPaid"`
	BalanceBefore pricing.Money    `json:"balanceBefore"`
	NewBalance    pricing.Money    `json:"newBalance"`
	PaymentMethod string           `json:"paymentMethod"`
}

type clientSource interface {
	Get(ctx context.Context, id string) (repo.Client, error)
}

type productSource interface {
	Get(ctx context.Context, id string) (repo.Product, error)
}

type transactionStore interface {
	Get(ctx context.Context, id string) (ledger.Transaction, error)
	ListByClient(ctx context.Context, clientID string) ([]ledger.Transaction, error)
	Deposit(ctx context.Context, clientID string, amount pricing.Money, paymentMethod, notes string) (ledger.Transaction, error)
	SubmitReturn(ctx context.Context, clientID string, req ledger.ReturnRequest) (ledger.Transaction, []common.Warning, error)
}

// Service orchestrates settlement creation: it prices the cart, classifies
// the draft and hands the validated request to the store. It holds no state
// of its own; a rejected draft leaves nothing behind.
type Service struct {
	Clients  clientSource
	Products productSource
	Tx       transactionStore
	Sub      settlement.Submitter
	Bus      *events.Bus
}

// Preview prices and classifies without submitting anything.
func (s *Service) Preview(ctx context.Context, in SettleRequest) (Preview, []common.Warning, error) {
	draft, warnings, err := s.buildDraft(ctx, in)
	if err != nil {
		return Preview{}, nil, err
	}
	classified, err := settlement.Classify(draft)
	if err != nil {
		return Preview{}, nil, err
	}
	warnings.Merge(classified.Warnings)
	return previewOf(classified), warnings, nil
}

// Settle classifies and submits the draft. The confirmed transaction carries
// the authoritative balances; on any error no local or stored state changes.
func (s *Service) Settle(ctx context.Context, in SettleRequest) (ledger.Transaction, []common.Warning, error) {
	draft, warnings, err := s.buildDraft(ctx, in)
	if err != nil {
		obs.ObserveSettlement("unknown", "rejected")
		return ledger.Transaction{}, nil, err
	}
	outcome, err := settlement.Settle(ctx, draft, s.Sub)
	if err != nil {
		obs.ObserveSettlement(string(outcome.Type), "rejected")
		return ledger.Transaction{}, nil, err
	}
	warnings.Merge(outcome.Warnings)
	obs.ObserveSettlement(string(outcome.Transaction.Type), "confirmed")
	s.emit(ctx, events.TopicSettlementConfirmed, outcome.Transaction)
	return outcome.Transaction, warnings, nil
}

// Deposit records a balance top-up.
func (s *Service) Deposit(ctx context.Context, clientID string, in DepositRequest) (ledger.Transaction, error) {
	amount := pricing.ParseAmount(in.AmountPaid)
	confirmed, err := s.Tx.Deposit(ctx, clientID, amount, in.PaymentMethod, in.Notes)
	if err != nil {
		obs.ObserveDeposit("rejected")
		return ledger.Transaction{}, mapStoreError(err)
	}
	obs.ObserveDeposit("confirmed")
	s.emit(ctx, events.TopicDepositRecorded, confirmed)
	return confirmed, nil
}

// Return pre-validates the return against the fetched history and then
// submits it. The store re-validates inside its own transaction; its answer
// wins when the local history was stale.
func (s *Service) Return(ctx context.Context, in ReturnSubmitRequest) (ledger.Transaction, []common.Warning, error) {
	req := ledger.ReturnRequest{
		ReferenceID:    in.ReferenceID,
		Items:          in.Items,
		AmountReturned: in.AmountReturned,
		Reason:         in.Reason,
	}

	original, err := s.Tx.Get(ctx, in.ReferenceID)
	if err != nil {
		obs.ObserveReturn("rejected")
		return ledger.Transaction{}, nil, mapStoreError(err)
	}
	history, err := s.Tx.ListByClient(ctx, in.ClientID)
	if err != nil {
		obs.ObserveReturn("rejected")
		return ledger.Transaction{}, nil, err
	}
	if _, _, err := ledger.PlanReturn(original, history, req); err != nil {
		obs.ObserveReturn("rejected")
		return ledger.Transaction{}, nil, err
	}

	confirmed, warnings, err := s.Tx.SubmitReturn(ctx, in.ClientID, req)
	if err != nil {
		obs.ObserveReturn("rejected")
		return ledger.Transaction{}, nil, mapStoreError(err)
	}
	obs.ObserveReturn("confirmed")
	s.emit(ctx, events.TopicReturnRecorded, confirmed)
	return confirmed, warnings, nil
}

func (s *Service) buildDraft(ctx context.Context, in SettleRequest) (settlement.Draft, common.Warnings, error) {
	draft := settlement.Draft{
		CartDiscount:   in.CartDiscount,
		Reason:         in.Reason,
		AmountTendered: pricing.ParseAmount(in.AmountPaid),
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
	}

	if strings.TrimSpace(in.ClientID) != "" {
		client, err := s.Clients.Get(ctx, in.ClientID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return settlement.Draft{}, nil, common.NewValidationError("clientId", "client not found")
			}
			return settlement.Draft{}, nil, err
		}
		draft.Mode = settlement.ModeRegistered
		draft.Client = &settlement.ClientSnapshot{ID: client.ID, Balance: client.Balance, Active: client.IsActive}
	} else {
		draft.Mode = settlement.ModeWalkIn
		draft.WalkIn = in.WalkIn
		if in.WalkIn == nil {
			// Let the classifier produce the canonical rejection.
			draft.WalkIn = &settlement.WalkInIdentity{}
		}
	}

	var warnings common.Warnings
	lines := make([]pricing.PricedLine, 0, len(in.Items))
	for _, lr := range in.Items {
		product, err := s.Products.Get(ctx, lr.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return settlement.Draft{}, nil, common.NewValidationError("items", fmt.Sprintf("product %s not found", lr.ProductID))
			}
			return settlement.Draft{}, nil, err
		}
		if !product.IsActive {
			return settlement.Draft{}, nil, common.NewValidationError("items", fmt.Sprintf("product %s is not available", product.Name))
		}
		line, lineWarnings := pricing.PriceLine(pricing.LineInput{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Unit:         product.Unit,
			Qty:          lr.Qty,
			UnitPrice:    product.UnitPrice,
			Discount:     lr.Discount,
			DiscountType: pricing.DiscountType(lr.DiscountType),
		})
		warnings.Merge(lineWarnings)
		lines = append(lines, line)
	}
	draft.Lines = lines
	return draft, warnings, nil
}

func (s *Service) emit(ctx context.Context, topic string, tx ledger.Transaction) {
	if s.Bus == nil {
		return
	}
	payload := map[string]any{
		"transactionId": tx.ID,
		"type":          tx.Type,
		"total":         tx.Total,
	}
	if tx.ClientID != "" {
		payload["clientId"] = tx.ClientID
	}
	if tx.BalanceAfter != nil {
		payload["balanceAfter"] = *tx.BalanceAfter
	}
	_, _ = s.Bus.Emit(ctx, topic, tx.ID, payload)
}

func previewOf(c settlement.Classified) Preview {
	return Preview{
		State:         c.State,
		Type:          c.Type,
		Subtotal:      c.Summary.Subtotal,
		Discount:      c.Summary.EffectiveDiscount,
		Total:         c.Summary.Total,
		EffectivePaid: c.EffectivePaid,
		BalanceBefore: c.BalanceBefore,
		NewBalance:    c.NewBalance,
		PaymentMethod: c.PaymentMethod,
	}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return common.NewAppError("NOT_FOUND", "transaction or client not found", 404, err)
	case errors.Is(err, repo.ErrClientSuspended):
		return common.NewBalanceRuleError(common.RuleSuspendedClient, "client account is suspended")
	case errors.Is(err, repo.ErrStaleBalance),
		errors.Is(err, repo.ErrInsufficientStock),
		errors.Is(err, repo.ErrReturnExceedsRemaining):
		return &common.SettlementRejectedError{Err: err}
	default:
		return err
	}
}
