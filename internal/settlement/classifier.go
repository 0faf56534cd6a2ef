package settlement

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/ledger"
	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// CreditPaymentMethod is the sentinel recorded on PICKUP transactions. Goods
// left without full payment, so the payment-method field must not pretend a
// real tender covered the shortfall.
const CreditPaymentMethod = "credit"

// WalkInTolerance is the rounding tolerance, in minor units, applied when
// matching a walk-in tender against the cart total (0.01 currency units).
const WalkInTolerance pricing.Money = 1

// WarnClientEntersDebt is emitted when a registered-client settlement leaves
// the balance negative. Ending in debt is allowed; it just has to be shown
// prominently before submission.
const WarnClientEntersDebt = "CLIENT_ENTERS_DEBT"

// Mode distinguishes registered clients from ephemeral walk-in buyers.
type Mode string

const (
	// ModeRegistered settles against a stored client balance.
	ModeRegistered Mode = "registered"
	// ModeWalkIn settles for an unregistered buyer with no persisted balance.
	ModeWalkIn Mode = "walk-in"
)

// State tracks a draft through its settlement lifecycle.
type State string

const (
	StateDrafting   State = "Drafting"
	StateValidated  State = "Validated"
	StateClassified State = "Classified"
	StateSettled    State = "Settled"
	StateRejected   State = "Rejected"
)

// ClientSnapshot is the registered-client input to classification. The
// balance here is a snapshot that may already be stale; the store re-checks
// it at submission time.
type ClientSnapshot struct {
	ID      string
	Balance pricing.Money
	Active  bool
}

// WalkInIdentity identifies an unregistered buyer for the receipt only.
type WalkInIdentity struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Draft is a settlement in progress: a priced cart plus tender and identity.
type Draft struct {
	Mode           Mode
	Client         *ClientSnapshot
	WalkIn         *WalkInIdentity
	Lines          []pricing.PricedLine
	CartDiscount   pricing.Money
	Reason         string
	AmountTendered pricing.Money
	PaymentMethod  string
	Notes          string
}

// Classified is the result of a successful Drafting -> Classified run. No
// side effect has happened yet; Settle performs the submission.
type Classified struct {
	State         State
	Type          ledger.Type
	Summary       pricing.Summary
	EffectivePaid pricing.Money
	BalanceBefore pricing.Money
	NewBalance    pricing.Money
	PaymentMethod string
	Warnings      []common.Warning
}

// Validate moves a draft from Drafting to Validated, or rejects it. Every
// rejection is a ValidationError or BalanceRuleError the caller can
// distinguish by kind.
func Validate(d Draft) error {
	switch d.Mode {
	case ModeRegistered:
		if d.Client == nil || strings.TrimSpace(d.Client.ID) == "" {
			return common.NewValidationError("client", "a client must be selected for a registered sale")
		}
		if !d.Client.Active {
			return common.NewBalanceRuleError(common.RuleSuspendedClient, "client account is suspended")
		}
	case ModeWalkIn:
		if d.WalkIn == nil || strings.TrimSpace(d.WalkIn.Name) == "" {
			return common.NewValidationError("walkInClient.name", "walk-in client name is required")
		}
	default:
		return common.NewValidationError("mode", fmt.Sprintf("unknown settlement mode %q", d.Mode))
	}
	if len(d.Lines) == 0 {
		return common.NewValidationError("items", "cart has no priced lines")
	}
	if d.AmountTendered < 0 {
		return common.NewValidationError("amountPaid", "amount tendered cannot be negative")
	}
	summary := pricing.Aggregate(d.Lines, d.CartDiscount)
	if summary.EffectiveDiscount > 0 && strings.TrimSpace(d.Reason) == "" {
		return common.NewValidationError("reason", "a reason is required when a discount is applied")
	}
	return nil
}

// Classify runs validation and then decides the transaction type, the
// effective payment and the resulting balance. It is pure: nothing is
// persisted and no cached balance is touched.
func Classify(d Draft) (Classified, error) {
	if err := Validate(d); err != nil {
		return Classified{State: StateRejected}, err
	}
	summary := pricing.Aggregate(d.Lines, d.CartDiscount)

	if d.Mode == ModeWalkIn {
		effective := d.AmountTendered
		diff := effective - summary.Total
		switch {
		case diff > WalkInTolerance:
			return Classified{State: StateRejected}, common.NewBalanceRuleError(
				common.RuleWalkInOverpayment, "overpayment not allowed for walk-in clients")
		case diff < -WalkInTolerance:
			return Classified{State: StateRejected}, common.NewBalanceRuleError(
				common.RuleWalkInUnderpayment, "full payment is required for walk-in clients")
		}
		// Walk-in always nets to zero; no balance is persisted.
		return Classified{
			State:         StateClassified,
			Type:          ledger.TypePurchase,
			Summary:       summary,
			EffectivePaid: effective,
			PaymentMethod: d.PaymentMethod,
		}, nil
	}

	prior := d.Client.Balance
	effective := d.AmountTendered + prior
	out := Classified{
		State:         StateClassified,
		Summary:       summary,
		EffectivePaid: effective,
		BalanceBefore: prior,
		NewBalance:    effective - summary.Total,
		PaymentMethod: d.PaymentMethod,
	}
	if effective >= summary.Total {
		out.Type = ledger.TypePurchase
	} else {
		out.Type = ledger.TypePickup
		out.PaymentMethod = CreditPaymentMethod
	}
	if out.NewBalance < 0 {
		warnings := common.Warnings{}
		warnings.Add(WarnClientEntersDebt, fmt.Sprintf("client balance will be %d after settlement", out.NewBalance))
		out.Warnings = warnings
	}
	return out, nil
}
