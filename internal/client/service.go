package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/obs"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
	"github.com/noah-isme/backend-bangunan/internal/repo"
)

// CreateRequest carries the writable fields for a new registered client.
type CreateRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// PatchRequest updates a subset of client fields. Balance is deliberately
// absent: it only moves through settlements, deposits and returns.
type PatchRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

// LedgerView is a client's recomputed transaction history plus the balance
// the fold arrived at. Entries are newest-first for display.
type LedgerView struct {
	ClientID string         `json:"clientId"`
	Balance  pricing.Money  `json:"balance"`
	Entries  []ledger.Entry `json:"entries"`
}

type clientStore interface {
	Create(ctx context.Context, in repo.ClientInput) (repo.Client, error)
	Get(ctx context.Context, id string) (repo.Client, error)
	List(ctx context.Context, limit, offset int) ([]repo.Client, int64, error)
	Update(ctx context.Context, id string, patch repo.ClientPatch) (repo.Client, error)
}

type historySource interface {
	ListByClient(ctx context.Context, clientID string) ([]ledger.Transaction, error)
}

// Service covers client registration, maintenance and the ledger view.
type Service struct {
	Clients clientStore
	Tx      historySource
}

func (s *Service) Create(ctx context.Context, in CreateRequest) (repo.Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return repo.Client{}, common.NewValidationError("name", "client name is required")
	}
	return s.Clients.Create(ctx, repo.ClientInput{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	})
}

func (s *Service) Get(ctx context.Context, id string) (repo.Client, error) {
	c, err := s.Clients.Get(ctx, id)
	if err != nil {
		return repo.Client{}, mapClientError(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]repo.Client, common.Pagination, error) {
	offset := (page - 1) * perPage
	clients, total, err := s.Clients.List(ctx, perPage, offset)
	if err != nil {
		return nil, common.Pagination{}, err
	}
	return clients, common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)}, nil
}

func (s *Service) Patch(ctx context.Context, id string, in PatchRequest) (repo.Client, error) {
	updated, err := s.Clients.Update(ctx, id, repo.ClientPatch{
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		IsActive: in.IsActive,
	})
	if err != nil {
		return repo.Client{}, mapClientError(err)
	}
	return updated, nil
}

// Ledger recomputes the client's balance history from the stored
// transactions. The fold discards stored running balances and rebuilds them
// from transaction effects, so a corrected history is reflected immediately.
func (s *Service) Ledger(ctx context.Context, id string) (LedgerView, error) {
	if _, err := s.Clients.Get(ctx, id); err != nil {
		return LedgerView{}, mapClientError(err)
	}
	history, err := s.Tx.ListByClient(ctx, id)
	if err != nil {
		return LedgerView{}, err
	}

	start := time.Now()
	entries := ledger.Recompute(history)
	obs.ObserveLedgerRecompute(time.Since(start))

	view := LedgerView{ClientID: id, Entries: reverse(entries)}
	if len(entries) > 0 {
		view.Balance = entries[len(entries)-1].RunningAfter
	}
	return view, nil
}

func reverse(entries []ledger.Entry) []ledger.Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ledger.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func mapClientError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return common.NewAppError("NOT_FOUND", "client not found", 404, err)
	}
	return err
}
