package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"authgate/internal/audit"
	"authgate/internal/auth/models"
	"authgate/internal/platform/metrics"
	"authgate/pkg/attrs"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/requestcontext"
)

var tracer = otel.Tracer("authgate/internal/auth/service")

// AccountStore is the credential store. FindByEmail reports
// sentinel.ErrNotFound for unknown emails; CreateIfEmailAvailable reports
// sentinel.ErrConflict when the email is already registered.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateIfEmailAvailable(ctx context.Context, account *models.Account) error
	Ping(ctx context.Context) error
}

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
	VerifyDummy(ctx context.Context, plaintext string) error
}

type TokenIssuer interface {
	GenerateAccessToken(accountID uuid.UUID, email string) (string, time.Time, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs registration and login. It keeps transport concerns out of
// business logic.
type Service struct {
	accounts       AccountStore
	hasher         PasswordHasher
	tokens         TokenIssuer
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func New(accounts AccountStore, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("accounts store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	s := &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping reports whether the credential store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.accounts.Ping(ctx)
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

func missingFields() error {
	return dErrors.New(dErrors.CodeMissingFields, "email and password are required")
}

// invalidCredentials is shared by the unknown-email and wrong-password paths.
func invalidCredentials() error {
	return dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
}

// fromContext maps a cancelled or expired request onto a domain error.
func fromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "request cancelled")
}

// internal logs the cause with the request id and returns an opaque error.
func (s *Service) internal(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// logAudit emits an audit event built from key/value pairs. Recognised keys
// are account_id, email and reason. Emit failures are logged, never returned.
func (s *Service) logAudit(ctx context.Context, action audit.Action, kv ...any) {
	if s.auditPublisher == nil {
		return
	}
	fields := attrs.Pairs(kv)
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		AccountID: fields.String("account_id"),
		Email:     fields.String("email"),
		Reason:    fields.String("reason"),
		RequestID: requestcontext.RequestID(ctx),
	}.WithClient(requestcontext.ClientIP(ctx), requestcontext.UserAgent(ctx))

	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
