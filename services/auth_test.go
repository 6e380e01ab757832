package services

import (
	"context"
	"testing"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(database.NewMemoryStore(), "test-secret")

	msg, err := auth.SignUp(ctx, "Ada", "Lovelace", "Ada@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, MsgUserCreated, msg)

	msg, err = auth.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, MsgUserExists, msg)

	token, err := auth.SignIn(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "1", claims.Subject)

	_, err = auth.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.SignIn(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	auth := NewAuthService(database.NewMemoryStore(), "test-secret")

	_, err := auth.SignUp(context.Background(), "A", "B", "not-an-email", "password123")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.SignUp(context.Background(), "A", "B", "a@b.co", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseTokenRejects(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth := NewAuthService(store, "test-secret")
	_, err := auth.SignUp(ctx, "A", "B", "a@b.co", "password123")
	require.NoError(t, err)
	token, err := auth.SignIn(ctx, "a@b.co", "password123")
	require.NoError(t, err)

	other := NewAuthService(store, "other-secret")
	_, err = other.ParseToken(token)
	assert.Error(t, err)

	expired := NewAuthService(store, "test-secret")
	expired.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = expired.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = auth.ParseToken("garbage")
	assert.Error(t, err)
}
