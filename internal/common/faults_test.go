package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) (string, map[string]any) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return envelope.Error.Code, envelope.Error.Details
}

func TestJSONFaultValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONFault(rr, NewValidationError("reason", "a reason is required when a discount is applied"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rr.Code)
	}
	code, details := decodeError(t, rr)
	if code != "VALIDATION" {
		t.Fatalf("expected VALIDATION code, got %q", code)
	}
	if details["field"] != "reason" {
		t.Fatalf("expected field detail, got %v", details)
	}
}

func TestJSONFaultBalanceRule(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONFault(rr, NewBalanceRuleError(RuleWalkInOverpayment, "overpayment not allowed"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rr.Code)
	}
	code, details := decodeError(t, rr)
	if code != "BALANCE_RULE" {
		t.Fatalf("expected BALANCE_RULE code, got %q", code)
	}
	if details["rule"] != "WALKIN_OVERPAYMENT" {
		t.Fatalf("expected rule detail, got %v", details)
	}
}

func TestJSONFaultSettlementRejected(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONFault(rr, &SettlementRejectedError{Err: errors.New("stale balance")})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
	code, _ := decodeError(t, rr)
	if code != "SETTLEMENT_REJECTED" {
		t.Fatalf("expected SETTLEMENT_REJECTED code, got %q", code)
	}
}

func TestJSONFaultFallsBackToAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONFault(rr, NewAppError("NOT_FOUND", "client not found", http.StatusNotFound, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestJSONFaultUnknownErrorIsOpaque(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONFault(rr, errors.New("pq: connection reset"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
	code, _ := decodeError(t, rr)
	if code != "INTERNAL" {
		t.Fatalf("expected INTERNAL code, got %q", code)
	}
}

func TestSettlementRejectedUnwraps(t *testing.T) {
	cause := errors.New("stock changed")
	err := &SettlementRejectedError{Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to survive Unwrap")
	}
}
