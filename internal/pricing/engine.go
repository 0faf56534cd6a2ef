package pricing

import (
	"fmt"

	"github.com/noah-isme/backend-bangunan/internal/common"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// DiscountType selects how a line discount value is interpreted.
type DiscountType string

const (
	// DiscountAmount treats the discount value as a flat amount in minor units.
	DiscountAmount DiscountType = "amount"
	// DiscountPercent treats the discount value as a percentage of the line base.
	DiscountPercent DiscountType = "percent"
)

// Warning codes emitted when a discount is corrected to its ceiling.
const (
	WarnPercentClamped = "DISCOUNT_PERCENT_CLAMPED"
	WarnAmountClamped  = "DISCOUNT_AMOUNT_CLAMPED"
)

// LineInput describes a cart line before pricing.
type LineInput struct {
	ProductID    string
	ProductName  string
	Unit         string
	Qty          int
	UnitPrice    Money
	Discount     int64
	DiscountType DiscountType
}

// PricedLine is a priced cart line with the product fields snapshotted, so a
// later catalog edit never changes an already-recorded receipt.
type PricedLine struct {
	ProductID      string
	ProductName    string
	Unit           string
	Qty            int
	UnitPrice      Money
	Base           Money
	Discount       int64
	DiscountType   DiscountType
	DiscountAmount Money
	LineTotal      Money
}

// Summary aggregates computed cart components.
type Summary struct {
	Subtotal          Money
	LineDiscountTotal Money
	EffectiveDiscount Money
	Total             Money
}

// PriceLine computes a line's chargeable total. Out-of-range discounts are
// corrected to their ceiling and reported as warnings rather than errors.
func PriceLine(in LineInput) (PricedLine, []common.Warning) {
	var warnings common.Warnings

	qty := in.Qty
	if qty < 0 {
		qty = 0
	}
	unitPrice := in.UnitPrice
	if unitPrice < 0 {
		unitPrice = 0
	}
	base := Money(qty) * unitPrice

	discount := in.Discount
	if discount < 0 {
		discount = 0
	}
	var discountAmount Money
	switch in.DiscountType {
	case DiscountPercent:
		if discount > 100 {
			warnings.Add(WarnPercentClamped, fmt.Sprintf("percent discount %d corrected to 100", discount))
			discount = 100
		}
		discountAmount = base * Money(discount) / 100
	default:
		if discount > base {
			warnings.Add(WarnAmountClamped, fmt.Sprintf("discount %d exceeds line amount, corrected to %d", discount, base))
			discount = base
		}
		discountAmount = discount
	}

	total := base - discountAmount
	if total < 0 {
		total = 0
	}
	return PricedLine{
		ProductID:      in.ProductID,
		ProductName:    in.ProductName,
		Unit:           in.Unit,
		Qty:            qty,
		UnitPrice:      unitPrice,
		Base:           base,
		Discount:       discount,
		DiscountType:   in.DiscountType,
		DiscountAmount: discountAmount,
		LineTotal:      total,
	}, warnings
}

// Aggregate sums priced lines into cart totals. Line discounts take precedence
// over the cart-wide discount: the cart discount only applies when no line
// carries one. The number chosen here is the one printed on the receipt, so
// the precedence must not change.
func Aggregate(lines []PricedLine, cartDiscount Money) Summary {
	var subtotal, lineDiscount Money
	for _, ln := range lines {
		subtotal += ln.Base
		lineDiscount += ln.DiscountAmount
	}
	if cartDiscount < 0 {
		cartDiscount = 0
	}
	effective := lineDiscount
	if effective == 0 {
		effective = cartDiscount
	}
	if effective > subtotal {
		effective = subtotal
	}
	return Summary{
		Subtotal:          subtotal,
		LineDiscountTotal: lineDiscount,
		EffectiveDiscount: effective,
		Total:             subtotal - effective,
	}
}
