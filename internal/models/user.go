package models

import (
	"strings"
	"time"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user.
	ID int64

	// Name and Surname are the display name parts.
	Name    string
	Surname string

	// Mail is the user's email address (unique, stored lower-case).
	// Used for login, friend requests and bill invitations.
	Mail string

	// Admin users may search and edit other accounts.
	Admin bool

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with normalized mail and fresh timestamps.
func NewUser(name, surname, mail, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		Name:         name,
		Surname:      surname,
		Mail:         NormalizeMail(mail),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeMail trims and lower-cases an email address.
func NormalizeMail(mail string) string {
	return strings.ToLower(strings.TrimSpace(mail))
}
