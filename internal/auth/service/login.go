package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"authgate/internal/audit"
	"authgate/internal/auth/models"
	"authgate/internal/platform/metrics"
	dErrors "authgate/pkg/domain-errors"
	"authgate/pkg/platform/sentinel"
)

// Login checks email and pw against the stored digest and issues an access
// token. Unknown emails and wrong passwords return the same error and cost
// the same bcrypt work.
func (s *Service) Login(ctx context.Context, email, pw string) (*models.LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	outcome := metrics.OutcomeError
	defer func() {
		span.SetAttributes(attribute.String("auth.outcome", outcome))
		s.metrics.IncLogin(outcome)
	}()

	if isBlank(email) || isBlank(pw) {
		outcome = metrics.OutcomeMissingFields
		return nil, missingFields()
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.internal(ctx, span, err, "failed to look up account")
		}
		if err := s.hasher.VerifyDummy(ctx, pw); err != nil {
			return nil, fromContext(err)
		}
		outcome = metrics.OutcomeInvalidCredentials
		s.logAudit(ctx, audit.ActionLoginFailed, "email", email, "reason", "unknown_account")
		return nil, invalidCredentials()
	}

	ok, err := s.hasher.Verify(ctx, pw, account.PasswordHash)
	if err != nil {
		return nil, fromContext(err)
	}
	if !ok {
		outcome = metrics.OutcomeInvalidCredentials
		s.logAudit(ctx, audit.ActionLoginFailed,
			"account_id", account.ID.String(),
			"email", email,
			"reason", "wrong_password",
		)
		return nil, invalidCredentials()
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, s.internal(ctx, span, err, "failed to issue access token")
	}

	outcome = metrics.OutcomeSuccess
	s.logAudit(ctx, audit.ActionLoginSucceeded,
		"account_id", account.ID.String(),
		"email", account.Email,
	)
	return &models.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}

// GetAccount re-reads the account bound to an authenticated identity.
func (s *Service) GetAccount(ctx context.Context, email string) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "auth.GetAccount")
	defer span.End()

	if isBlank(email) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing identity")
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, s.internal(ctx, span, err, "failed to look up account")
	}
	return account, nil
}
