package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
	"github.com/noah-isme/backend-bangunan/internal/settlement"
)

// Transactions persists settlements. Every write that touches a client
// balance locks the client row first, so concurrent submissions from two
// terminals serialize here instead of through client-side locking.
type Transactions struct {
	Pool *pgxpool.Pool
}

const txColumns = `id, client_id, walkin_name, walkin_phone, type, items, subtotal,
	discount, total, amount_paid, payment_method, balance_before, balance_after,
	reference_id, amount_returned, reason, notes, created_at`

// Submit implements settlement.Submitter for PURCHASE and PICKUP requests.
// The classification snapshot is compared against the locked balance; a
// mismatch means another terminal settled in between and the request is
// refused without any effect.
func (t *Transactions) Submit(ctx context.Context, req settlement.Request) (ledger.Transaction, error) {
	tx, err := t.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var subtotal pricing.Money
	for _, it := range req.Items {
		subtotal += it.Subtotal
	}
	total := subtotal - req.Discount
	if total < 0 {
		total = 0
	}

	var balanceBefore, balanceAfter *pricing.Money
	var clientID *string
	if req.WalkIn == nil {
		balance, active, err := lockClient(ctx, tx, req.ClientID)
		if err != nil {
			return ledger.Transaction{}, err
		}
		if !active {
			return ledger.Transaction{}, ErrClientSuspended
		}
		if balance != req.SnapshotBalance {
			return ledger.Transaction{}, ErrStaleBalance
		}
		after := balance + req.AmountPaid - total
		balanceBefore, balanceAfter = &balance, &after
		clientID = &req.ClientID
	}

	if err := adjustStock(ctx, tx, req.Items, -1); err != nil {
		return ledger.Transaction{}, err
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return ledger.Transaction{}, err
	}
	walkInName, walkInPhone := "", ""
	if req.WalkIn != nil {
		walkInName, walkInPhone = req.WalkIn.Name, req.WalkIn.Phone
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO transactions
			(client_id, walkin_name, walkin_phone, type, items, subtotal, discount,
			 total, amount_paid, payment_method, balance_before, balance_after, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+txColumns,
		clientID, walkInName, walkInPhone, string(req.Type), itemsJSON, subtotal,
		req.Discount, total, req.AmountPaid, req.PaymentMethod, balanceBefore, balanceAfter,
		req.Reason, req.Notes)
	confirmed, err := scanTransaction(row)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if balanceAfter != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE clients SET balance = $2, updated_at = now() WHERE id = $1`,
			req.ClientID, *balanceAfter); err != nil {
			return ledger.Transaction{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	return confirmed, nil
}

// Deposit records a balance top-up for a registered client.
func (t *Transactions) Deposit(ctx context.Context, clientID string, amount pricing.Money, paymentMethod, notes string) (ledger.Transaction, error) {
	if amount <= 0 {
		return ledger.Transaction{}, common.NewValidationError("amountPaid", "deposit amount must be positive")
	}
	tx, err := t.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	balance, active, err := lockClient(ctx, tx, clientID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	_ = active // deposits are accepted even for suspended clients; only goods movement is blocked
	after := balance + amount

	row := tx.QueryRow(ctx, `
		INSERT INTO transactions
			(client_id, type, items, amount_paid, payment_method, balance_before, balance_after, notes)
		VALUES ($1, $2, '[]', $3, $4, $5, $6, $7)
		RETURNING `+txColumns,
		clientID, string(ledger.TypeDeposit), amount, paymentMethod, balance, after, notes)
	confirmed, err := scanTransaction(row)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE clients SET balance = $2, updated_at = now() WHERE id = $1`, clientID, after); err != nil {
		return ledger.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	return confirmed, nil
}

// SubmitReturn validates and records a return against the original
// transaction. The plan computed by the caller is advisory; quantities and
// the amount ceiling are re-validated here against the stored history, which
// is the source of truth for what was already returned.
func (t *Transactions) SubmitReturn(ctx context.Context, clientID string, req ledger.ReturnRequest) (ledger.Transaction, []common.Warning, error) {
	tx, err := t.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Transaction{}, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	balance, _, err := lockClient(ctx, tx, clientID)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}

	original, err := getTransactionTx(ctx, tx, req.ReferenceID)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}
	if original.ClientID != clientID {
		return ledger.Transaction{}, nil, common.NewValidationError("referenceTransactionId", "transaction does not belong to this client")
	}
	prior, err := listReturnsTx(ctx, tx, original.ID)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}

	plan, warnings, err := ledger.PlanReturn(original, prior, req)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}

	items := make([]ledger.Item, 0, len(plan.Items))
	for _, pi := range plan.Items {
		items = append(items, ledger.Item{
			ProductID:   pi.ProductID,
			ProductName: pi.ProductName,
			Unit:        pi.Unit,
			Qty:         pi.Qty,
			UnitPrice:   pi.UnitPrice,
			Subtotal:    pi.Amount,
		})
	}
	if err := adjustStock(ctx, tx, items, +1); err != nil {
		return ledger.Transaction{}, nil, err
	}

	after := balance + plan.AmountReturned
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO transactions
			(client_id, type, items, balance_before, balance_after,
			 reference_id, amount_returned, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+txColumns,
		clientID, string(ledger.TypeReturn), itemsJSON, balance, after,
		plan.ReferenceID, plan.AmountReturned, req.Reason)
	confirmed, err := scanTransaction(row)
	if err != nil {
		return ledger.Transaction{}, nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE clients SET balance = $2, updated_at = now() WHERE id = $1`, clientID, after); err != nil {
		return ledger.Transaction{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, nil, err
	}
	return confirmed, warnings, nil
}

// Get returns a single transaction by id.
func (t *Transactions) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	row := t.Pool.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransactionRow(row)
}

// ListByClient returns the client's full history ordered by creation time.
// The ledger fold re-sorts anyway; the ORDER BY just keeps reads stable.
func (t *Transactions) ListByClient(ctx context.Context, clientID string) ([]ledger.Transaction, error) {
	rows, err := t.Pool.Query(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE client_id = $1
		ORDER BY created_at`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, item)
	}
	return txs, rows.Err()
}

func lockClient(ctx context.Context, tx pgx.Tx, clientID string) (pricing.Money, bool, error) {
	var balance pricing.Money
	var active bool
	err := tx.QueryRow(ctx,
		`SELECT balance, is_active FROM clients WHERE id = $1 FOR UPDATE`, clientID).
		Scan(&balance, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, err
	}
	return balance, active, nil
}

// adjustStock moves stock for each line; direction -1 decrements (sale),
// +1 restocks (return). Sales refuse to go below zero.
func adjustStock(ctx context.Context, tx pgx.Tx, items []ledger.Item, direction int) error {
	for _, it := range items {
		delta := it.Qty * direction
		var tag int64
		if direction < 0 {
			res, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock + $2, updated_at = now()
				WHERE id = $1 AND stock + $2 >= 0`, it.ProductID, delta)
			if err != nil {
				return err
			}
			tag = res.RowsAffected()
		} else {
			res, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock + $2, updated_at = now()
				WHERE id = $1`, it.ProductID, delta)
			if err != nil {
				return err
			}
			tag = res.RowsAffected()
		}
		if tag == 0 {
			return fmt.Errorf("%w: product %s", ErrInsufficientStock, it.ProductID)
		}
	}
	return nil
}

func getTransactionTx(ctx context.Context, tx pgx.Tx, id string) (ledger.Transaction, error) {
	row := tx.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransactionRow(row)
}

func listReturnsTx(ctx context.Context, tx pgx.Tx, referenceID string) ([]ledger.Transaction, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE reference_id = $1 AND type = $2
		ORDER BY created_at`, referenceID, string(ledger.TypeReturn))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, item)
	}
	return txs, rows.Err()
}

func scanTransactionRow(row pgx.Row) (ledger.Transaction, error) {
	confirmed, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Transaction{}, ErrNotFound
		}
		return ledger.Transaction{}, err
	}
	return confirmed, nil
}

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var (
		out         ledger.Transaction
		clientID    *string
		referenceID *string
		txType      string
		itemsJSON   []byte
	)
	err := row.Scan(&out.ID, &clientID, &out.WalkInName, &out.WalkInPhone, &txType, &itemsJSON,
		&out.Subtotal, &out.Discount, &out.Total, &out.AmountPaid, &out.PaymentMethod,
		&out.BalanceBefore, &out.BalanceAfter, &referenceID, &out.AmountReturned,
		&out.Reason, &out.Notes, &out.CreatedAt)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if clientID != nil {
		out.ClientID = *clientID
	}
	if referenceID != nil {
		out.ReferenceID = *referenceID
	}
	out.Type = ledger.Type(strings.TrimSpace(txType))
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &out.Items); err != nil {
			return ledger.Transaction{}, fmt.Errorf("decode items: %w", err)
		}
	}
	return out, nil
}
