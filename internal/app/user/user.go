/*
Package user contains core data structures and persistence for user accounts.

It defines the User struct, the Directory lookup contract consumed by the
real-time hub, and the full account Store used by the HTTP handlers.
*/
package user

import (
	"context"
	"time"
)

// Role names recognized by the authorization checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	// ID is the stable unique identifier assigned by the store.
	ID string `json:"id"`

	// Username is the unique login name, also used as the hub identity.
	Username string `json:"userName"`

	// Email is the unique contact address used for registration checks.
	Email string `json:"email"`

	// FullName is the display name shown to chat peers.
	FullName string `json:"fullName"`

	// ProfileImage is the URL of the user's profile picture.
	ProfileImage string `json:"profileImage"`

	// Role is the account role ("user" or "admin").
	Role string `json:"role"`

	// CreatedAt records when the account was created.
	CreatedAt time.Time `json:"-"`
}

// Directory is the read-only identity lookup contract consumed by the chat hub.
// Lookup misses are not errors: a nil User with a nil error means "not found".
type Directory interface {
	FindByName(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
}

// Store is the full account persistence contract used by the HTTP handlers.
// It extends Directory with the mutations needed by registration and the
// admin endpoints.
type Store interface {
	Directory

	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u User, passwordHash string) (*User, error)
	PasswordHash(ctx context.Context, id string) (string, error)
	UpdateProfile(ctx context.Context, id string, fullName string, email string, profileImage string) (*User, error)
	UpdateRole(ctx context.Context, id string, role string) error
	Delete(ctx context.Context, id string) error
}
