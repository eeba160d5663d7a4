package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevClaims is the token shape accepted by HMACVerifier.
type DevClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// HMACVerifier accepts HS256 tokens signed with a shared secret. It stands in
// for a hosted provider in local development and tests.
type HMACVerifier struct {
	secret   []byte
	provider string
}

func NewHMACVerifier(secret, provider string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), provider: provider}
}

func (h *HMACVerifier) Verify(_ context.Context, rawToken string) (*Principal, error) {
	var claims DevClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("hmac: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("hmac: %w", ErrInvalidToken)
	}
	return &Principal{
		Provider: h.provider,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
	}, nil
}

// Sign issues a token accepted by this verifier.
func (h *HMACVerifier) Sign(subject, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DevClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}
