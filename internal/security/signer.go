package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by a session token.
type Claims struct {
	HolderID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Identity returns the holder's display name carried in the subject claim.
func (c Claims) Identity() string {
	return c.Subject
}

// Signer creates and verifies HS256 session tokens. It keeps no state other
// than the process-wide secret, the token lifetime and its clock.
type Signer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

type SignerOption func(*Signer)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(secret string, lifetime time.Duration, opts ...SignerOption) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	s := &Signer{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

func (s *Signer) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for the holder. The random jti keeps two tokens issued
// in the same second for the same holder distinct.
func (s *Signer) Issue(identity string, holderID int64) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		HolderID: holderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and the embedded expiry. Every failure,
// including malformed input, is reported as false.
func (s *Signer) Verify(tokenString string) (Claims, bool) {
	var claims Claims
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, false
	}

	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}
	if claims.Subject == "" || claims.HolderID <= 0 {
		return Claims{}, false
	}

	return claims, true
}

// ExpiryOf reads the embedded expiry without verifying the signature or
// checking whether the expiry has passed.
func (s *Signer) ExpiryOf(tokenString string) (time.Time, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.UTC(), true
}
