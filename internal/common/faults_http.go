package common

import (
	"errors"
	"net/http"
)

// JSONFault renders a domain fault with a stable machine-readable code, so
// the UI can pick presentation by kind instead of parsing message text.
func JSONFault(w http.ResponseWriter, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", validation.Message,
			map[string]any{"field": validation.Field})
		return
	}
	var rule *BalanceRuleError
	if errors.As(err, &rule) {
		JSONError(w, http.StatusUnprocessableEntity, "BALANCE_RULE", rule.Message,
			map[string]any{"rule": string(rule.Rule)})
		return
	}
	var rejected *SettlementRejectedError
	if errors.As(err, &rejected) {
		JSONError(w, http.StatusConflict, "SETTLEMENT_REJECTED", rejected.Error(), nil)
		return
	}
	JSONAppError(w, err)
}
