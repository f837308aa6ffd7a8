package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

var tracer = otel.Tracer("authgate/internal/auth/store/account")

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (email);
`

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the accounts table and its unique email index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

// CreateIfEmailAvailable inserts account in a single statement. The unique
// index decides races; a skipped insert reports sentinel.ErrConflict.
func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, account *models.Account) error {
	ctx, span := tracer.Start(ctx, "PostgresStore.CreateIfEmailAvailable")
	defer span.End()

	query := `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			span.SetAttributes(attribute.Bool("account.conflict", true))
			return sentinel.ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("insert account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert account rows affected: %w", err)
	}
	if rows == 0 {
		span.SetAttributes(attribute.Bool("account.conflict", true))
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "PostgresStore.FindByEmail")
	defer span.End()

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	var account models.Account
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}
