package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a dev/test fallback when no database is configured.
// It mimics the postgres constraints: username_norm is unique.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]UserAuth
	norms map[string]string // username_norm -> user id
}

// NewMemoryStore constructs an in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]UserAuth),
		norms: make(map[string]string),
	}
}

// CreateUser creates a user, enforcing username uniqueness.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if in.Username == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if in.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	norm := NormalizeUsername(in.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.norms[norm]; taken {
		return User{}, ConflictError{Op: op, Field: "username"}
	}

	u := User{
		ID:           id,
		Username:     in.Username,
		UsernameNorm: norm,
		CreatedAt:    now,
	}
	s.byID[id] = UserAuth{User: u, PasswordHash: in.PasswordHash}
	s.norms[norm] = id

	return u, nil
}

// GetUserByID returns the user with the given id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetUserByID", Resource: "user"}
	}
	return ua.User, nil
}

// GetUserByUsername resolves a user by normalized username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	ua, err := s.GetUserAuthByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	return ua.User, nil
}

// GetUserAuthByUsername resolves a user plus credential for sign-in.
func (s *MemoryStore) GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error) {
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.norms[NormalizeUsername(username)]
	if !ok {
		return UserAuth{}, NotFoundError{Op: "identity.GetUserAuthByUsername", Resource: "user"}
	}
	return s.byID[id], nil
}

// UsernameExists reports whether the normalized username is taken.
func (s *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.norms[NormalizeUsername(username)]
	return ok, nil
}

// UserExists reports whether a user id exists. Used by the content layer to
// emulate the posts->users foreign key when running without postgres.
func (s *MemoryStore) UserExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok, nil
}
