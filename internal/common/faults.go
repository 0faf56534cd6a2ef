package common

import "fmt"

// ValidationError reports locally recoverable input problems (empty cart,
// missing reason, blank walk-in name). It always blocks submission and never
// reaches the persistence collaborator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError constructs a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BalanceRule identifies which non-correctable balance rule was violated.
type BalanceRule string

const (
	// RuleWalkInOverpayment rejects walk-in tenders above the cart total.
	RuleWalkInOverpayment BalanceRule = "WALKIN_OVERPAYMENT"
	// RuleWalkInUnderpayment rejects walk-in tenders below the cart total.
	RuleWalkInUnderpayment BalanceRule = "WALKIN_UNDERPAYMENT"
	// RuleSuspendedClient rejects settlements for suspended clients.
	RuleSuspendedClient BalanceRule = "SUSPENDED_CLIENT"
)

// BalanceRuleError reports a hard balance rule violation. Correctable cases
// (discount and return-amount clamps) are surfaced as Warnings instead.
type BalanceRuleError struct {
	Rule    BalanceRule
	Message string
}

func (e *BalanceRuleError) Error() string { return e.Message }

// NewBalanceRuleError constructs a BalanceRuleError for the given rule.
func NewBalanceRuleError(rule BalanceRule, message string) *BalanceRuleError {
	return &BalanceRuleError{Rule: rule, Message: message}
}

// SettlementRejectedError wraps a refusal from the persistence collaborator
// (stale balance snapshot, stale stock). The caller's local state is left
// untouched and the underlying cause is surfaced verbatim.
type SettlementRejectedError struct {
	Err error
}

func (e *SettlementRejectedError) Error() string {
	if e.Err == nil {
		return "settlement rejected"
	}
	return "settlement rejected: " + e.Err.Error()
}

func (e *SettlementRejectedError) Unwrap() error { return e.Err }
