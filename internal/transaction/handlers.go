package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-bangunan/internal/common"
)

// Handler exposes the settlement surface over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Settle handles POST /settlements. A confirmed settlement is returned with
// its authoritative balances; a rejected one returns a fault payload and
// leaves nothing persisted.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settlement service not configured", nil)
		return
	}
	payload, ok := h.decodeSettle(w, r)
	if !ok {
		return
	}
	confirmed, warnings, err := h.Svc.Settle(r.Context(), payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, confirmed, warnings)
}

// Preview handles POST /settlements/preview. Nothing is persisted; the
// response mirrors what Settle would do with the same payload.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settlement service not configured", nil)
		return
	}
	payload, ok := h.decodeSettle(w, r)
	if !ok {
		return
	}
	preview, warnings, err := h.Svc.Preview(r.Context(), payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, preview, warnings)
}

// Deposit handles POST /clients/{id}/deposits.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settlement service not configured", nil)
		return
	}
	clientID := strings.TrimSpace(chi.URLParam(r, "id"))
	if clientID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "client id is required", nil)
		return
	}
	var payload DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.validateStruct(w, payload) {
		return
	}
	confirmed, err := h.Svc.Deposit(r.Context(), clientID, payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, confirmed, nil)
}

// Return handles POST /returns.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settlement service not configured", nil)
		return
	}
	var payload ReturnSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.validateStruct(w, payload) {
		return
	}
	confirmed, warnings, err := h.Svc.Return(r.Context(), payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, confirmed, warnings)
}

func (h *Handler) decodeSettle(w http.ResponseWriter, r *http.Request) (SettleRequest, bool) {
	var payload SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return SettleRequest{}, false
	}
	if !h.validateStruct(w, payload) {
		return SettleRequest{}, false
	}
	return payload, true
}

// validateStruct applies the declared struct tags and reports the first
// failing field in the canonical validation shape.
func (h *Handler) validateStruct(w http.ResponseWriter, payload any) bool {
	if h.Validate == nil {
		return true
	}
	err := h.Validate.Struct(payload)
	if err == nil {
		return true
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		first := fields[0]
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION",
			"field "+first.Field()+" failed on "+first.Tag(),
			map[string]any{"field": first.Field()})
		return false
	}
	common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	return false
}
