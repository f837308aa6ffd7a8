package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered identity. Email is the unique, case-sensitive key
// and never changes after creation. PasswordHash holds the bcrypt digest.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount builds an account ready for insertion.
func NewAccount(email, passwordHash string, now time.Time) *Account {
	return &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AccountView is the caller-safe projection of an Account. It never carries
// the password digest.
type AccountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips the secret digest.
func (a *Account) Public() AccountView {
	return AccountView{
		ID:        a.ID.String(),
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
