package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
	"github.com/noah-isme/backend-bangunan/internal/repo"
	"github.com/noah-isme/backend-bangunan/internal/settlement"
)

type stubClients struct {
	clients map[string]repo.Client
}

func (s *stubClients) Get(_ context.Context, id string) (repo.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return repo.Client{}, repo.ErrNotFound
	}
	return c, nil
}

type stubProducts struct {
	products map[string]repo.Product
}

func (s *stubProducts) Get(_ context.Context, id string) (repo.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return repo.Product{}, repo.ErrNotFound
	}
	return p, nil
}

type stubTxStore struct {
	byID       map[string]ledger.Transaction
	history    []ledger.Transaction
	deposit    ledger.Transaction
	depositErr error
	returned   ledger.Transaction
	returnErr  error
}

func (s *stubTxStore) Get(_ context.Context, id string) (ledger.Transaction, error) {
	tx, ok := s.byID[id]
	if !ok {
		return ledger.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

func (s *stubTxStore) ListByClient(_ context.Context, _ string) ([]ledger.Transaction, error) {
	return s.history, nil
}

func (s *stubTxStore) Deposit(_ context.Context, _ string, amount pricing.Money, _, _ string) (ledger.Transaction, error) {
	if s.depositErr != nil {
		return ledger.Transaction{}, s.depositErr
	}
	s.deposit.Type = ledger.TypeDeposit
	s.deposit.AmountPaid = amount
	return s.deposit, nil
}

func (s *stubTxStore) SubmitReturn(_ context.Context, _ string, _ ledger.ReturnRequest) (ledger.Transaction, []common.Warning, error) {
	if s.returnErr != nil {
		return ledger.Transaction{}, nil, s.returnErr
	}
	return s.returned, nil, nil
}

type stubSubmitter struct {
	req  settlement.Request
	resp ledger.Transaction
	err  error
}

func (s *stubSubmitter) Submit(_ context.Context, req settlement.Request) (ledger.Transaction, error) {
	s.req = req
	return s.resp, s.err
}

func newTestService(sub *stubSubmitter, store *stubTxStore) *Service {
	return &Service{
		Clients: &stubClients{clients: map[string]repo.Client{
			"c1": {ID: "c1", Name: "CV Maju Jaya", Balance: 5_000, IsActive: true},
		}},
		Products: &stubProducts{products: map[string]repo.Product{
			"p1": {ID: "p1", Name: "Semen 50kg", Unit: "sak", UnitPrice: 6_000, Stock: 100, IsActive: true},
			"p2": {ID: "p2", Name: "Pasir Cor", Unit: "m3", UnitPrice: 30_000, Stock: 10, IsActive: false},
		}},
		Tx:  store,
		Sub: sub,
	}
}

func TestPreviewClassifiesWithoutSubmitting(t *testing.T) {
	sub := &stubSubmitter{}
	svc := newTestService(sub, &stubTxStore{})

	preview, _, err := svc.Preview(context.Background(), SettleRequest{
		ClientID:   "c1",
		Items:      []LineRequest{{ProductID: "p1", Qty: 2}},
		AmountPaid: "7.000",
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Type != ledger.TypePurchase {
		t.Fatalf("expected PURCHASE, got %s", preview.Type)
	}
	if preview.Total != 12_000 {
		t.Fatalf("expected total 12000, got %d", preview.Total)
	}
	if preview.EffectivePaid != 12_000 {
		t.Fatalf("expected effective paid 12000, got %d", preview.EffectivePaid)
	}
	if sub.req.ClientID != "" {
		t.Fatal("preview must not reach the submitter")
	}
}

func TestSettleSubmitsAndReturnsConfirmed(t *testing.T) {
	sub := &stubSubmitter{resp: ledger.Transaction{ID: "tx1", Type: ledger.TypePurchase, Total: 12_000}}
	svc := newTestService(sub, &stubTxStore{})

	confirmed, _, err := svc.Settle(context.Background(), SettleRequest{
		ClientID:   "c1",
		Items:      []LineRequest{{ProductID: "p1", Qty: 2}},
		AmountPaid: "7000",
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if confirmed.ID != "tx1" {
		t.Fatalf("expected confirmed transaction, got %+v", confirmed)
	}
	if sub.req.SnapshotBalance != 5_000 {
		t.Fatalf("expected snapshot balance forwarded, got %d", sub.req.SnapshotBalance)
	}
}

func TestSettleUnknownClientRejected(t *testing.T) {
	svc := newTestService(&stubSubmitter{}, &stubTxStore{})
	_, _, err := svc.Settle(context.Background(), SettleRequest{
		ClientID:   "ghost",
		Items:      []LineRequest{{ProductID: "p1", Qty: 1}},
		AmountPaid: "6000",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) || validation.Field != "clientId" {
		t.Fatalf("expected clientId validation error, got %v", err)
	}
}

func TestSettleInactiveProductRejected(t *testing.T) {
	svc := newTestService(&stubSubmitter{}, &stubTxStore{})
	_, _, err := svc.Settle(context.Background(), SettleRequest{
		ClientID:   "c1",
		Items:      []LineRequest{{ProductID: "p2", Qty: 1}},
		AmountPaid: "30000",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSettleWalkInUsesSanitizedTender(t *testing.T) {
	sub := &stubSubmitter{resp: ledger.Transaction{ID: "tx2", Type: ledger.TypePurchase}}
	svc := newTestService(sub, &stubTxStore{})

	_, _, err := svc.Settle(context.Background(), SettleRequest{
		WalkIn:     &settlement.WalkInIdentity{Name: "Pak Budi"},
		Items:      []LineRequest{{ProductID: "p1", Qty: 2}},
		AmountPaid: "Rp 12.000",
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sub.req.AmountPaid != 12_000 {
		t.Fatalf("expected tender sanitized to 12000, got %d", sub.req.AmountPaid)
	}
}

func TestDepositMapsStoreErrors(t *testing.T) {
	store := &stubTxStore{depositErr: repo.ErrClientSuspended}
	svc := newTestService(&stubSubmitter{}, store)

	_, err := svc.Deposit(context.Background(), "c1", DepositRequest{AmountPaid: "5000"})
	var rule *common.BalanceRuleError
	if !errors.As(err, &rule) || rule.Rule != common.RuleSuspendedClient {
		t.Fatalf("expected suspended rule violation, got %v", err)
	}
}

func TestReturnPreValidatesBeforeSubmitting(t *testing.T) {
	store := &stubTxStore{
		byID: map[string]ledger.Transaction{
			"orig": {
				ID:    "orig",
				Type:  ledger.TypePurchase,
				Items: []ledger.Item{{ProductID: "p1", Qty: 2, UnitPrice: 6_000}},
			},
		},
		returned: ledger.Transaction{ID: "ret1", Type: ledger.TypeReturn},
	}
	svc := newTestService(&stubSubmitter{}, store)

	_, _, err := svc.Return(context.Background(), ReturnSubmitRequest{
		ClientID:    "c1",
		ReferenceID: "orig",
		Items:       []ledger.ReturnItem{{ProductID: "p1", Qty: 5}},
		Reason:      "damaged",
	})
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for excess quantity, got %v", err)
	}

	confirmed, _, err := svc.Return(context.Background(), ReturnSubmitRequest{
		ClientID:    "c1",
		ReferenceID: "orig",
		Items:       []ledger.ReturnItem{{ProductID: "p1", Qty: 1}},
		Reason:      "damaged",
	})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if confirmed.ID != "ret1" {
		t.Fatalf("expected confirmed return, got %+v", confirmed)
	}
}

func TestReturnStaleHistoryMapsToRejection(t *testing.T) {
	store := &stubTxStore{
		byID: map[string]ledger.Transaction{
			"orig": {
				ID:    "orig",
				Type:  ledger.TypePurchase,
				Items: []ledger.Item{{ProductID: "p1", Qty: 2, UnitPrice: 6_000}},
			},
		},
		returnErr: repo.ErrReturnExceedsRemaining,
	}
	svc := newTestService(&stubSubmitter{}, store)

	_, _, err := svc.Return(context.Background(), ReturnSubmitRequest{
		ClientID:    "c1",
		ReferenceID: "orig",
		Items:       []ledger.ReturnItem{{ProductID: "p1", Qty: 1}},
		Reason:      "damaged",
	})
	var rejected *common.SettlementRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected SettlementRejectedError, got %v", err)
	}
}
