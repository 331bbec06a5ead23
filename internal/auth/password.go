package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/billpay/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is enforced when hashing new credentials.
const MinPasswordLength = 8

// SubscriberLookup is the slice of storage the authenticator needs.
type SubscriberLookup interface {
	FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage SubscriberLookup
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage SubscriberLookup) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// HashCredential validates and bcrypt-hashes a plaintext password.
func HashCredential(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticate verifies the username and password, returning the subscriber if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.Subscriber, error) {
	sub, err := a.storage.FindSubscriberByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscriber: %w", err)
	}
	if sub == nil {
		// Equalise timing with the known-username path.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(credential))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(sub.CredentialHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return sub, nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("billpay-unknown-user"), bcrypt.DefaultCost)
	return hash
})
