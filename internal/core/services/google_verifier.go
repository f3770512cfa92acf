package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var errGoogleEmailUnverified = errors.New("google account email is not verified")

// GoogleIdentity is the trusted subset of a verified Google ID token
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks a Google ID token and returns its identity
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// IDTokenVerifier validates signature, issuer, expiry and audience against
// Google's published keys.
type IDTokenVerifier struct {
	clientID string
}

// NewIDTokenVerifier creates a verifier for the OAuth client ID
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}
	return identityFromClaims(payload.Subject, payload.Claims)
}

func identityFromClaims(subject string, claims map[string]interface{}) (*GoogleIdentity, error) {
	email, _ := claims["email"].(string)
	if subject == "" || email == "" {
		return nil, errors.New("google id token lacks subject or email")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return nil, errGoogleEmailUnverified
	}

	name, _ := claims["name"].(string)
	return &GoogleIdentity{Subject: subject, Email: email, Name: name}, nil
}
