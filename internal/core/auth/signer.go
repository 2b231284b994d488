// Package auth signs the bearer tokens results endpoints expect.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Signer struct {
	secret  []byte
	expiry  time.Duration
	subject string
}

// NewSigner returns nil when secret is empty; a nil Signer signs nothing.
func NewSigner(secret string, expiry time.Duration, subject string) *Signer {
	if secret == "" {
		return nil
	}

	return &Signer{
		secret:  []byte(secret),
		expiry:  expiry,
		subject: subject,
	}
}

// Token returns a short-lived HS256 token, or "" for a nil Signer.
func (s *Signer) Token(now time.Time) (string, error) {
	if s == nil {
		return "", nil
	}

	claims := jwt.MapClaims{
		"sub": s.subject,
		"iat": now.Unix(),
		"exp": now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses a token signed with the same secret and returns its subject.
func (s *Signer) Verify(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	return token.Claims.GetSubject()
}
