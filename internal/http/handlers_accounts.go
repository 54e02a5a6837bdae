package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/domain/model"
	"github.com/inkhouse/storyapi/internal/service"
)

// AccountHandlers provides HTTP handlers for allow-list administration.
// All operations are editor only.
type AccountHandlers struct {
	Svc    *service.AccountService
	Logger *slog.Logger
}

// List handles GET /accounts.
func (h *AccountHandlers) List(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}

	accounts, err := h.Svc.List(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// Create handles POST /accounts.
func (h *AccountHandlers) Create(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}

	var req *model.CreateAccountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	acct, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrAccountExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "email_conflict", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}
	WriteJSON(w, http.StatusCreated, acct)
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountHandlers) Delete(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), m.Param(1))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("account not found")})
		return
	}
	if h.Logger != nil {
		h.Logger.InfoContext(r.Context(), "allow-list entry removed",
			"account_id", m.Param(1),
			"actor", IdentityFromContext(r.Context()).Email)
	}
	w.WriteHeader(http.StatusNoContent)
}
