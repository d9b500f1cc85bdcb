// Package auth verifies credentials and issues the access and refresh
// tokens carried by API clients.
package auth

import (
	"context"

	"github.com/natalia11920/pairpay/internal/models"
)

// Registration holds the profile of a new account.
type Registration struct {
	Name    string
	Surname string
	Mail    string
	Admin   bool
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given profile and credential.
	// Returns ErrEmailExists if the mail is taken.
	Register(ctx context.Context, reg Registration, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns ErrInvalidCredentials if the mail is unknown or the credential does not match.
	Authenticate(ctx context.Context, mail, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
