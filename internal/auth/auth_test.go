package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billpay/internal/models"
)

type fakeLookup map[string]*models.Subscriber

func (f fakeLookup) FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error) {
	return f[username], nil
}

type failingLookup struct{}

func (failingLookup) FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error) {
	return nil, errors.New("connection refused")
}

func TestHashCredential(t *testing.T) {
	_, err := HashCredential("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashCredential("correct horse")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")
	assert.True(t, strings.HasPrefix(hash, "$2"))
}

func TestPasswordAuthenticator(t *testing.T) {
	hash, err := HashCredential("elif-secret")
	require.NoError(t, err)

	elif := models.NewSubscriber("1", "elif", hash, models.UserTypeNormal)
	a := NewPasswordAuthenticator(fakeLookup{"elif": elif})
	ctx := context.Background()

	sub, err := a.Authenticate(ctx, "elif", "elif-secret")
	require.NoError(t, err)
	assert.Equal(t, "1", sub.SubscriberNumber)

	_, err = a.Authenticate(ctx, "elif", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody", "elif-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewPasswordAuthenticator(failingLookup{}).Authenticate(ctx, "elif", "elif-secret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	admin := &models.Subscriber{ID: 2, SubscriberNumber: "2", Username: "admin", UserType: models.UserTypeAdmin}

	token, err := m.Generate(admin)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.SubscriberNumber)
	assert.Equal(t, "2", claims.Subject)
	assert.True(t, claims.IsAdmin())

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewJWTManager("test-secret", -time.Minute).Generate(admin)
		require.NoError(t, err)
		_, err = m.Validate(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserType: "admin"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("normal user is not admin", func(t *testing.T) {
		normal := &models.Subscriber{ID: 1, SubscriberNumber: "1", UserType: models.UserTypeNormal}
		token, err := m.Generate(normal)
		require.NoError(t, err)
		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.False(t, claims.IsAdmin())
	})
}
