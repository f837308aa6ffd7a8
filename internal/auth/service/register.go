package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"authgate/internal/audit"
	"authgate/internal/auth/models"
	"authgate/internal/auth/password"
	"authgate/internal/platform/metrics"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/sentinel"
	"authgate/pkg/requestcontext"
)

// Register creates an account for email with a bcrypt digest of pw.
// On success exactly one account exists for email; on failure nothing was
// written.
func (s *Service) Register(ctx context.Context, email, pw string) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	outcome := metrics.OutcomeError
	defer func() {
		span.SetAttributes(attribute.String("auth.outcome", outcome))
		s.metrics.IncRegistration(outcome)
	}()

	if isBlank(email) || isBlank(pw) {
		outcome = metrics.OutcomeMissingFields
		return nil, missingFields()
	}

	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		outcome = metrics.OutcomeConflict
		return nil, accountExists()
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, s.internal(ctx, span, err, "failed to look up account")
	}

	digest, err := s.hasher.Hash(ctx, pw)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooLong):
			outcome = metrics.OutcomeInvalidInput
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "password must be at most 72 bytes")
		case ctx.Err() != nil:
			return nil, fromContext(ctx.Err())
		default:
			return nil, s.internal(ctx, span, err, "failed to hash password")
		}
	}

	account := models.NewAccount(email, digest, requestcontext.Now(ctx))
	if err := s.accounts.CreateIfEmailAvailable(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			outcome = metrics.OutcomeConflict
			return nil, accountExists()
		}
		return nil, s.internal(ctx, span, err, "failed to create account")
	}

	outcome = metrics.OutcomeSuccess
	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, audit.ActionAccountRegistered,
		"account_id", account.ID.String(),
		"email", account.Email,
	)
	return account, nil
}

func accountExists() error {
	return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
}
