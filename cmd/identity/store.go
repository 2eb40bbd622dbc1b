package identity

import (
	"context"
	"time"
)

// User is quill's canonical principal.
type User struct {
	ID           string
	Username     string
	UsernameNorm string

	CreatedAt time.Time
}

// UserAuth carries a user together with its stored credential.
// IMPORTANT: PasswordHash is the encoded one-way hash; the plaintext password
// is never stored and never logged.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput describes a sign-up request. PasswordHash must already be
// the encoded credential; hashing happens in the credential codec, not here.
type CreateUserInput struct {
	Username     string
	PasswordHash string
	Now          time.Time
}

// Store is the user persistence boundary.
type Store interface {
	// CreateUser creates a user and its credential transactionally.
	// Returns ConflictError{Field: "username"} when the normalized username
	// is already taken.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByID returns the user with the given id, or NotFoundError.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserByUsername resolves a user by normalized username, or NotFoundError.
	GetUserByUsername(ctx context.Context, username string) (User, error)

	// GetUserAuthByUsername resolves a user plus credential for sign-in.
	GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error)

	// UsernameExists reports whether the normalized username is taken.
	UsernameExists(ctx context.Context, username string) (bool, error)
}
