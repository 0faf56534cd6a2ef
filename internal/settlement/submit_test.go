package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
)

type stubSubmitter struct {
	req  Request
	resp ledger.Transaction
	err  error
}

func (s *stubSubmitter) Submit(_ context.Context, req Request) (ledger.Transaction, error) {
	s.req = req
	return s.resp, s.err
}

func TestSettleSubmitsClassifiedRequest(t *testing.T) {
	sub := &stubSubmitter{resp: ledger.Transaction{ID: "tx1", Type: ledger.TypePurchase}}
	d := registeredDraft(5_000, 12_000, 7_000)

	out, err := Settle(context.Background(), d, sub)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.State != StateSettled {
		t.Fatalf("expected Settled state, got %s", out.State)
	}
	if out.Transaction.ID != "tx1" {
		t.Fatalf("expected confirmed transaction, got %+v", out.Transaction)
	}
	if sub.req.ClientID != "c1" {
		t.Fatalf("expected client id forwarded, got %q", sub.req.ClientID)
	}
	if sub.req.SnapshotBalance != 5_000 {
		t.Fatalf("expected snapshot balance 5000, got %d", sub.req.SnapshotBalance)
	}
	if sub.req.AmountPaid != 7_000 {
		t.Fatalf("expected raw tender 7000, got %d", sub.req.AmountPaid)
	}
}

func TestSettleWrapsSubmitterError(t *testing.T) {
	cause := errors.New("stale balance")
	sub := &stubSubmitter{err: cause}
	d := registeredDraft(0, 10_000, 10_000)

	out, err := Settle(context.Background(), d, sub)
	var rejected *common.SettlementRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected SettlementRejectedError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause preserved through Unwrap")
	}
	if out.State != StateRejected {
		t.Fatalf("expected Rejected state, got %s", out.State)
	}
}

func TestSettleDoesNotSubmitInvalidDraft(t *testing.T) {
	sub := &stubSubmitter{}
	d := registeredDraft(0, 10_000, 10_000)
	d.Lines = nil

	_, err := Settle(context.Background(), d, sub)
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if sub.req.ClientID != "" {
		t.Fatal("submitter must not be called for an invalid draft")
	}
}

func TestSettleWalkInCarriesIdentity(t *testing.T) {
	sub := &stubSubmitter{resp: ledger.Transaction{ID: "tx2"}}
	d := walkInDraft(12_000, 12_000)

	if _, err := Settle(context.Background(), d, sub); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sub.req.WalkIn == nil || sub.req.WalkIn.Name != "Pak Budi" {
		t.Fatalf("expected walk-in identity forwarded, got %+v", sub.req.WalkIn)
	}
	if sub.req.ClientID != "" {
		t.Fatal("walk-in settlement must not carry a client id")
	}
}
