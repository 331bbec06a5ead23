package models

import "time"

// Subscriber represents an account holder.
//
// SubscriberNumber and Username are each globally unique. Neither changes
// after creation, and bill operations never modify a subscriber.
type Subscriber struct {
	// ID is the system-assigned identifier.
	ID int64

	// SubscriberNumber is the externally facing natural key used by every
	// client channel.
	SubscriberNumber string

	// Username is used only for login.
	Username string

	// CredentialHash is a bcrypt hash of the subscriber's secret.
	CredentialHash string

	UserType UserType

	// CreatedAt is the Unix timestamp when the subscriber was provisioned.
	CreatedAt int64
}

// NewSubscriber creates a subscriber ready to be handed to the store.
func NewSubscriber(number, username, credentialHash string, userType UserType) *Subscriber {
	return &Subscriber{
		SubscriberNumber: number,
		Username:         username,
		CredentialHash:   credentialHash,
		UserType:         userType,
		CreatedAt:        time.Now().Unix(),
	}
}

// IsAdmin reports whether the subscriber may create bills for others.
func (s *Subscriber) IsAdmin() bool {
	return s.UserType == UserTypeAdmin
}
