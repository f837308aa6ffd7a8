package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"authgate/internal/auth/models"
	"authgate/internal/platform/metrics"
	"authgate/internal/platform/middleware"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
	"authgate/pkg/requestcontext"
)

// maxBodyBytes caps credential payloads.
const maxBodyBytes = 1 << 20

// Service defines the interface for credential operations.
type Service interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	GetAccount(ctx context.Context, email string) (*models.Account, error)
}

// Handler serves the registration, login and protected endpoints.
type Handler struct {
	logger   *slog.Logger
	auth     Service
	metrics  *metrics.Metrics
	verifier middleware.TokenVerifier
}

func New(auth Service, verifier middleware.TokenVerifier, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		auth:     auth,
		metrics:  m,
		verifier: verifier,
	}
}

// Register mounts the auth routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/api/auth/register", h.handleRegister)
		r.Post("/api/auth/login", h.handleLogin)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.verifier, h.logger, h.metrics))
		r.Get("/api/protected", h.handleProtected)
		r.Get("/api/auth/me", h.handleMe)
	})
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*models.CredentialsRequest, bool) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid credentials request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	account, err := h.auth.Register(r.Context(), req.Email, req.Secret())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "Account created",
		Account: account.Public(),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Secret())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	expiresIn := result.ExpiresAt.Sub(requestcontext.Now(r.Context())).Seconds()
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Message:   "Login successful",
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: int64(math.Max(0, math.Round(expiresIn))),
	})
}

// identity reads what RequireAuth attached. A miss means the route was
// mounted without the gate.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (requestcontext.Identity, bool) {
	id, ok := requestcontext.IdentityFrom(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "identity missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
	}
	return id, ok
}

func (h *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ProtectedResponse{
		Message: "Access granted",
		User: models.PrincipalView{
			ID:        id.AccountID,
			Email:     id.Email,
			IssuedAt:  id.IssuedAt.Unix(),
			ExpiresAt: id.ExpiresAt.Unix(),
		},
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	account, err := h.auth.GetAccount(r.Context(), id.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AccountResponse{Account: account.Public()})
}
