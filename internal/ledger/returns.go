package ledger

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// WarnReturnAmountClamped is emitted when the requested return amount exceeds
// the computed ceiling and is corrected downward.
const WarnReturnAmountClamped = "RETURN_AMOUNT_CLAMPED"

// ReturnItem is the request payload for returning one original line.
type ReturnItem struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"quantity" validate:"gt=0"`
	Unit      string `json:"unit"`
}

// ReturnRequest asks to reverse part of a referenced PURCHASE/PICKUP.
// AmountReturned is a single editable total: staff may adjust it downward for
// partial-value returns (restocking fees), never above the computed ceiling.
type ReturnRequest struct {
	ReferenceID    string        `json:"referenceTransactionId"`
	Items          []ReturnItem  `json:"items"`
	AmountReturned pricing.Money `json:"actualAmountReturned"`
	Reason         string        `json:"reason"`
}

// PlannedItem is a validated return line valued at the original unit price.
type PlannedItem struct {
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	Unit        string        `json:"unit"`
	Qty         int           `json:"quantity"`
	UnitPrice   pricing.Money `json:"unitPrice"`
	Amount      pricing.Money `json:"amount"`
}

// ReturnPlan is the validated, clamped result of a return request.
type ReturnPlan struct {
	ReferenceID    string        `json:"referenceTransactionId"`
	Items          []PlannedItem `json:"items"`
	Ceiling        pricing.Money `json:"ceiling"`
	AmountReturned pricing.Money `json:"actualAmountReturned"`
}

// PlanReturn validates a return request against the original transaction and
// any prior returns referencing it. This is a best-effort pre-validation: the
// store remains the final guard for already-returned quantities, but invalid
// requests are cut off here before any submission happens.
func PlanReturn(original Transaction, prior []Transaction, req ReturnRequest) (ReturnPlan, []common.Warning, error) {
	if original.Type != TypePurchase && original.Type != TypePickup {
		return ReturnPlan{}, nil, common.NewValidationError("referenceTransactionId", "only PURCHASE or PICKUP transactions can be returned")
	}
	if len(req.Items) == 0 {
		return ReturnPlan{}, nil, common.NewValidationError("items", "no items selected for return")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return ReturnPlan{}, nil, common.NewValidationError("reason", "return reason is required")
	}

	returned := returnedQuantities(original.ID, prior)

	var warnings common.Warnings
	var ceiling pricing.Money
	planned := make([]PlannedItem, 0, len(req.Items))
	for _, ri := range req.Items {
		line, ok := findItem(original.Items, ri.ProductID)
		if !ok {
			return ReturnPlan{}, nil, common.NewValidationError("items", fmt.Sprintf("product %s is not part of the original transaction", ri.ProductID))
		}
		if ri.Qty <= 0 {
			return ReturnPlan{}, nil, common.NewValidationError("items", fmt.Sprintf("return quantity for %s must be positive", ri.ProductID))
		}
		remaining := line.Qty - returned[ri.ProductID]
		if ri.Qty > remaining {
			return ReturnPlan{}, nil, common.NewValidationError("items", fmt.Sprintf("return quantity %d for %s exceeds remaining quantity %d", ri.Qty, ri.ProductID, remaining))
		}
		amount := pricing.Money(ri.Qty) * line.UnitPrice
		ceiling += amount
		planned = append(planned, PlannedItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Unit:        line.Unit,
			Qty:         ri.Qty,
			UnitPrice:   line.UnitPrice,
			Amount:      amount,
		})
	}

	amount := req.AmountReturned
	if amount <= 0 {
		amount = ceiling
	}
	if amount > ceiling {
		warnings.Add(WarnReturnAmountClamped, fmt.Sprintf("return amount %d exceeds ceiling %d, corrected to ceiling", amount, ceiling))
		amount = ceiling
	}

	return ReturnPlan{
		ReferenceID:    original.ID,
		Items:          planned,
		Ceiling:        ceiling,
		AmountReturned: amount,
	}, warnings, nil
}

func findItem(items []Item, productID string) (Item, bool) {
	for _, it := range items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}

// returnedQuantities sums quantities already returned per product across
// prior RETURN transactions referencing the original.
func returnedQuantities(originalID string, prior []Transaction) map[string]int {
	out := make(map[string]int)
	for _, t := range prior {
		if t.Type != TypeReturn || t.ReferenceID != originalID {
			continue
		}
		for _, it := range t.Items {
			out[it.ProductID] += it.Qty
		}
	}
	return out
}
