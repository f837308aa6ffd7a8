package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authgate/pkg/requestcontext"
)

// DefaultTTL is the fixed lifetime of an access token.
const DefaultTTL = time.Hour

// ErrMissingSigningKey means the service was started without a secret.
// Callers must treat it as fatal rather than fall back to unsigned tokens.
var ErrMissingSigningKey = errors.New("jwt signing key is not configured")

// Claims represents the JWT claims for our access tokens.
// Subject carries the account id; Email is the bound identity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*JWTService)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *JWTService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects the time source used for both issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewJWTService(signingKey string, issuer string, opts ...Option) (*JWTService, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime applied to new tokens.
func (s *JWTService) TTL() time.Duration { return s.ttl }

// GenerateAccessToken signs an HS256 token binding accountID and email,
// valid from now until now+TTL. It also returns the expiry.
func (s *JWTService) GenerateAccessToken(accountID uuid.UUID, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signedToken, expiresAt, nil
}

// ValidateToken checks structure, signature and expiry, in that order, and
// returns the bound identity. Failures are *VerificationError.
func (s *JWTService) ValidateToken(tokenString string) (*requestcontext.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, &VerificationError{Kind: InvalidSignature}
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, &VerificationError{Kind: Malformed, Err: errors.New("token is missing identity claims")}
	}

	id := &requestcontext.Identity{
		AccountID: claims.Subject,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// classify maps jwt parser errors onto the three verification kinds.
// The parser checks the signature before claims, so a forged token that is
// also expired reports InvalidSignature.
func classify(err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &VerificationError{Kind: Malformed, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerificationError{Kind: InvalidSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerificationError{Kind: Expired, Err: err}
	default:
		return &VerificationError{Kind: Malformed, Err: err}
	}
}
