package ledger

import (
	"time"

	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// Type tags a transaction with its settlement classification.
type Type string

const (
	// TypePurchase is a fully covered sale (tender plus any credit >= total).
	TypePurchase Type = "PURCHASE"
	// TypePickup is a registered-client sale settled on credit.
	TypePickup Type = "PICKUP"
	// TypeDeposit is a balance top-up with no goods movement.
	TypeDeposit Type = "DEPOSIT"
	// TypeReturn reverses part or all of a referenced PURCHASE/PICKUP.
	TypeReturn Type = "RETURN"
)

// Item is a transaction line with product fields snapshotted at sale time.
// Subtotal equals Qty * UnitPrice at creation and is never recomputed from
// the live catalog.
type Item struct {
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	Unit        string        `json:"unit"`
	Qty         int           `json:"quantity"`
	UnitPrice   pricing.Money `json:"unitPrice"`
	Subtotal    pricing.Money `json:"subtotal"`
}

// Transaction is immutable once created. BalanceBefore/BalanceAfter are
// computed by the ledger fold, never authored by the caller.
type Transaction struct {
	ID             string         `json:"id"`
	ClientID       string         `json:"clientId,omitempty"`
	WalkInName     string         `json:"walkInName,omitempty"`
	WalkInPhone    string         `json:"walkInPhone,omitempty"`
	Type           Type           `json:"type"`
	Items          []Item         `json:"items"`
	Subtotal       pricing.Money  `json:"subtotal"`
	Discount       pricing.Money  `json:"discount"`
	Total          pricing.Money  `json:"total"`
	AmountPaid     pricing.Money  `json:"amountPaid"`
	PaymentMethod  string         `json:"paymentMethod,omitempty"`
	BalanceBefore  *pricing.Money `json:"balanceBefore,omitempty"`
	BalanceAfter   *pricing.Money `json:"balanceAfter,omitempty"`
	ReferenceID    string         `json:"referenceTransactionId,omitempty"`
	AmountReturned pricing.Money  `json:"actualAmountReturned,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Effect returns the signed contribution of the transaction to the client's
// running balance.
func Effect(t Transaction) pricing.Money {
	switch t.Type {
	case TypeDeposit:
		return t.AmountPaid
	case TypeReturn:
		return t.AmountReturned
	default:
		return t.AmountPaid - t.Total
	}
}
