package models

import "time"

// CredentialsRequest is the body of both /register and /login. Older
// clients send the password as motDePasse.
type CredentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	MotDePasse string `json:"motDePasse,omitempty"`
}

// Secret returns password, falling back to motDePasse.
func (r CredentialsRequest) Secret() string {
	if r.Password != "" {
		return r.Password
	}
	return r.MotDePasse
}

type RegisterResponse struct {
	Message string      `json:"message"`
	Account AccountView `json:"account"`
}

// LoginResult is what the service hands back on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

type LoginResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// PrincipalView echoes the verified token claims back to the caller.
type PrincipalView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type ProtectedResponse struct {
	Message string        `json:"message"`
	User    PrincipalView `json:"user"`
}

// AccountResponse wraps the caller's own account view.
type AccountResponse struct {
	Account AccountView `json:"account"`
}
