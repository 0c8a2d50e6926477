package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pokerledger/tracker/internal/auth"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/service"
)

// SessionHandler serves the session listing and its admin mutations.
type SessionHandler struct {
	svc    *service.SessionService
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

// List handles GET /sessions. It is public.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("list sessions", "error", err, "request_id", GetRequestID(r.Context()))
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, records)
}

// Get handles GET /sessions/{id}. It is public.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rec)
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSessionInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body: "+err.Error()))
		return
	}

	rec, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.logger.Warn("create session", "error", err, "request_id", GetRequestID(r.Context()))
		RespondError(w, err)
		return
	}

	h.logger.Info("admin action", "action", "create", "id", rec.ID, "token_id", tokenID(r), "request_id", GetRequestID(r.Context()))
	RespondJSON(w, http.StatusCreated, rec)
}

// Delete handles DELETE /sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete session", "id", id, "error", err, "request_id", GetRequestID(r.Context()))
		RespondError(w, err)
		return
	}

	h.logger.Info("admin action", "action", "delete", "id", id, "token_id", tokenID(r), "request_id", GetRequestID(r.Context()))
	RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func sessionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, domain.ErrValidation("id must be an integer")
	}
	return id, nil
}

// tokenID returns the jti of the admin token that authorized r.
func tokenID(r *http.Request) string {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		return claims.ID
	}
	return ""
}
