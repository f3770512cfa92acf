package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidate(t *testing.T) {
	subject := Subject{UserID: 42, Email: "a@x.com", Role: "customer"}

	token, err := Generate(subject, PurposeSession, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Validate(token, testSecret, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, PurposeSession, claims.Purpose)

	// stateless: a second validation succeeds too
	_, err = Validate(token, testSecret, PurposeSession)
	assert.NoError(t, err)
}

func TestValidate_PurposeSeparation(t *testing.T) {
	subject := Subject{UserID: 1, Email: "a@x.com", Role: "customer", Version: 3}

	verifyToken, err := Generate(subject, PurposeEmailVerification, testSecret, time.Hour)
	require.NoError(t, err)
	resetToken, err := Generate(subject, PurposePasswordReset, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = Validate(verifyToken, testSecret, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = Validate(resetToken, testSecret, PurposeEmailVerification)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = Validate(resetToken, testSecret, PurposeSession)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := Validate(verifyToken, testSecret, PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.Version)
}

func TestValidate_Expired(t *testing.T) {
	token, err := Generate(Subject{UserID: 1}, PurposePasswordReset, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Validate(token, testSecret, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_Invalid(t *testing.T) {
	token, err := Generate(Subject{UserID: 1}, PurposeSession, testSecret, time.Hour)
	require.NoError(t, err)
	other, err := Generate(Subject{UserID: 2, Role: "admin"}, PurposeSession, testSecret, time.Hour)
	require.NoError(t, err)

	// payload of other, signature of token
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", token},
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := testSecret
			if tt.name == "wrong secret" {
				secret = "other-secret"
			}
			_, err := Validate(tt.token, secret, PurposeSession)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID:  1,
		Purpose: PurposeSession,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Validate(token, testSecret, PurposeSession)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
