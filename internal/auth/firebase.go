package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const firebaseJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// FirebaseVerifier checks Firebase ID tokens against Google's securetoken keys.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	return newFirebaseVerifier(projectID, oidc.NewRemoteKeySet(ctx, firebaseJWKS))
}

func newFirebaseVerifier(projectID string, keySet oidc.KeySet) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firebase: project id is required")
	}
	issuer := "https://securetoken.google.com/" + projectID
	return &FirebaseVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: projectID}),
	}, nil
}

// Verify returns the token's principal. The email claim is dropped unless
// Firebase marks it verified, so an unverified address never reaches the
// user store.
func (f *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	tok, err := f.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("firebase: %w", err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("firebase claims: %w", err)
	}
	p := &Principal{
		Provider: ProviderFirebase,
		Subject:  tok.Subject,
		Name:     claims.Name,
	}
	if claims.EmailVerified {
		p.Email = claims.Email
	}
	return p, nil
}
