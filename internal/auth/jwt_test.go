package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key-for-testing-purposes", 7*24*time.Hour)
}

func TestNewTokenService(t *testing.T) {
	service := newTestTokenService()
	assert.NotNil(t, service)
	assert.Equal(t, 7*24*time.Hour, service.Expiry())
}

func TestTokenService_Issue_Success(t *testing.T) {
	service := newTestTokenService()

	token, expiresAt, err := service.Issue("user-123", "test@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(8*24*time.Hour)))
}

func TestTokenService_Verify_Valid(t *testing.T) {
	service := newTestTokenService()

	userID := "user-456"
	email := "test@example.com"

	token, _, err := service.Issue(userID, email)
	require.NoError(t, err)

	claims, err := service.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, userID, claims.Subject)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	// Expired and forged tokens must fail with the same error.
	service := NewTokenService("test-secret", 1*time.Millisecond)

	token, _, err := service.Issue("user-123", "test@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := service.Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestTokenService_Verify_Invalid(t *testing.T) {
	service := newTestTokenService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenService_Verify_WrongSignature(t *testing.T) {
	service1 := NewTokenService("secret-key-1", 7*24*time.Hour)
	service2 := NewTokenService("secret-key-2", 7*24*time.Hour)

	token, _, err := service1.Issue("user-123", "test@example.com")
	require.NoError(t, err)

	claims, err := service2.Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestTokenService_Verify_WrongAlgorithm(t *testing.T) {
	service := newTestTokenService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-123",
		Email:  "test@example.com",
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.Verify(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
