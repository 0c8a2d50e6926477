package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pokerledger/tracker/internal/auth"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/guard"
	"github.com/pokerledger/tracker/internal/service"
)

// AuthHandler handles admin login, logout and the session check.
type AuthHandler struct {
	svc          *service.AuthService
	authn        *auth.Authenticator
	limiter      *guard.RateLimiter
	cookieMaxAge time.Duration
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	svc *service.AuthService,
	authn *auth.Authenticator,
	limiter *guard.RateLimiter,
	cookieMaxAge time.Duration,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		authn:        authn,
		limiter:      limiter,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)
	if res := h.limiter.Check(r.Context(), ip); !res.Allowed {
		h.logger.Warn("login throttled", "ip", ip, "reason", res.Reason)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		RespondError(w, domain.ErrRateLimited("too many login attempts"))
		return
	}

	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Login(input)
	if err != nil {
		h.logger.Warn("login failed", "ip", ip, "request_id", GetRequestID(r.Context()))
		RespondError(w, err)
		return
	}
	h.limiter.Reset(ip)

	http.SetCookie(w, h.cookie(result.Token, int(h.cookieMaxAge.Seconds())))
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"token": result.Token,
	})
}

// Logout handles POST /auth/logout by clearing the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1))
	RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /auth/me. It is public and only reports the state.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]bool{"authed": h.authn.IsAuthenticated(r)})
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.authn.CookieName(),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
