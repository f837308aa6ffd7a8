package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"authgate/internal/platform/metrics"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/httputil"
	"authgate/pkg/requestcontext"
)

// TokenVerifier validates a bearer token and returns the identity bound to it.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*requestcontext.Identity, error)
}

const bearerScheme = "Bearer"

// Authenticate resolves an Authorization header value. A missing header,
// a scheme other than Bearer or an empty token is unauthorized; a token the
// verifier rejects, for whatever reason, is forbidden.
func Authenticate(verifier TokenVerifier, header string) (*requestcontext.Identity, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header")
	}

	identity, err := verifier.ValidateToken(token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeForbidden, "invalid or expired token")
	}
	return identity, nil
}

// RequireAuth gates next behind a valid bearer token and attaches the
// resolved identity to the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, err := Authenticate(verifier, r.Header.Get("Authorization"))
			if err != nil {
				outcome := metrics.OutcomeUnauthenticated
				msg := "unauthorized access - missing token"
				if dErrors.HasCode(err, dErrors.CodeForbidden) {
					outcome = metrics.OutcomeForbidden
					msg = "unauthorized access - invalid token"
				}
				m.IncAccessGate(outcome)
				logger.WarnContext(ctx, msg,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			m.IncAccessGate(metrics.OutcomeSuccess)
			ctx = requestcontext.WithIdentity(ctx, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
