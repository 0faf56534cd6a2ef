package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// Client is a stored registered client. Balance is signed: positive means the
// shop owes the client credit, negative means the client owes debt.
type Client struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Email     string        `json:"email,omitempty"`
	Address   string        `json:"address,omitempty"`
	Balance   pricing.Money `json:"balance"`
	IsActive  bool          `json:"isActive"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ClientInput carries the writable client fields.
type ClientInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// ClientPatch updates a subset of client fields; nil members are left as is.
type ClientPatch struct {
	Name     *string
	Phone    *string
	Email    *string
	Address  *string
	IsActive *bool
}

// Clients provides access to the clients table.
type Clients struct {
	Pool *pgxpool.Pool
}

const clientColumns = "id, name, phone, email, address, balance, is_active, created_at, updated_at"

// Create inserts a new client with a zero balance.
func (c *Clients) Create(ctx context.Context, in ClientInput) (Client, error) {
	row := c.Pool.QueryRow(ctx, `
		INSERT INTO clients (name, phone, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+clientColumns,
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), strings.TrimSpace(in.Email), strings.TrimSpace(in.Address))
	return scanClient(row)
}

// Get returns the client by id.
func (c *Clients) Get(ctx context.Context, id string) (Client, error) {
	row := c.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return client, nil
}

// List returns clients ordered by name, paginated.
func (c *Clients) List(ctx context.Context, limit, offset int) ([]Client, int64, error) {
	var total int64
	if err := c.Pool.QueryRow(ctx, `SELECT count(*) FROM clients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := c.Pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := make([]Client, 0, limit)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, client)
	}
	return clients, total, rows.Err()
}

// Update applies a patch to the client. The balance cannot be patched here;
// it only moves through settlements, deposits and returns.
func (c *Clients) Update(ctx context.Context, id string, patch ClientPatch) (Client, error) {
	row := c.Pool.QueryRow(ctx, `
		UPDATE clients SET
			name       = COALESCE($2, name),
			phone      = COALESCE($3, phone),
			email      = COALESCE($4, email),
			address    = COALESCE($5, address),
			is_active  = COALESCE($6, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+clientColumns,
		id, patch.Name, patch.Phone, patch.Email, patch.Address, patch.IsActive)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return client, nil
}

func scanClient(row pgx.Row) (Client, error) {
	var client Client
	err := row.Scan(&client.ID, &client.Name, &client.Phone, &client.Email,
		&client.Address, &client.Balance, &client.IsActive, &client.CreatedAt, &client.UpdatedAt)
	return client, err
}
