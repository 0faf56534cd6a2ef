package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-bangunan/internal/common"
)

type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.validateStruct(w, payload) {
		return
	}
	created, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created, nil)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	clients, meta, err := h.Svc.List(r.Context(), page, perPage)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": clients, "pagination": meta})
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	var payload PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !h.validateStruct(w, payload) {
		return
	}
	updated, err := h.Svc.Patch(r.Context(), id, payload)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated, nil)
}

// Ledger handles GET /clients/{id}/ledger.
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.Ledger(r.Context(), id)
	if err != nil {
		common.JSONFault(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view, nil)
}

func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "client id is required", nil)
		return "", false
	}
	return id, true
}

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
