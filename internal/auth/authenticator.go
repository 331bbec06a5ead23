package auth

import (
	"context"

	"github.com/mmynk/billpay/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The service layer only needs to turn a username and credential into a
// subscriber; how the credential is verified stays behind this interface.
type Authenticator interface {
	// Authenticate verifies the credential and returns the subscriber.
	// Returns ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, username, credential string) (*models.Subscriber, error)
}
