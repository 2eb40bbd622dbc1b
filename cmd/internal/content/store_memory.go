package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quill/cmd/identity"
)

// UserChecker reports whether a user id exists. The memory store uses it to
// emulate the posts->users foreign key; identity.MemoryStore implements it.
type UserChecker interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// MemoryStore is a dev/test fallback when no database is configured.
type MemoryStore struct {
	users UserChecker

	mu    sync.RWMutex
	posts map[string]Post
}

// NewMemoryStore constructs an in-memory post store. users may be nil, in
// which case the owner link is not checked.
func NewMemoryStore(users UserChecker) *MemoryStore {
	return &MemoryStore{
		users: users,
		posts: make(map[string]Post),
	}
}

func (s *MemoryStore) checkOwner(ctx context.Context, op, ownerID string) error {
	if s.users == nil {
		return nil
	}
	ok, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return identity.NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

// CreatePost inserts a post owned by in.OwnerID.
func (s *MemoryStore) CreatePost(ctx context.Context, in CreatePostInput) (Post, error) {
	const op = "content.CreatePost"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Post{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "title is required"}
	}
	if in.OwnerID == "" {
		return Post{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "owner is required"}
	}
	if err := s.checkOwner(ctx, op, in.OwnerID); err != nil {
		return Post{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Post{}, err
	}

	p := Post{
		ID:          id,
		Title:       title,
		Description: in.Description,
		UserID:      in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.posts[id] = p
	s.mu.Unlock()

	return p, nil
}

// UpdatePost rewrites a post's fields and owner connection.
func (s *MemoryStore) UpdatePost(ctx context.Context, in UpdatePostInput) (Post, error) {
	const op = "content.UpdatePost"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Post{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "title is required"}
	}
	if err := s.checkOwner(ctx, op, in.OwnerID); err != nil {
		return Post{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[in.PostID]
	if !ok {
		return Post{}, identity.NotFoundError{Op: op, Resource: "post"}
	}

	p.Title = title
	p.Description = in.Description
	p.UserID = in.OwnerID
	p.UpdatedAt = now
	s.posts[in.PostID] = p

	return p, nil
}

// DeletePost removes a post and returns its last state.
func (s *MemoryStore) DeletePost(ctx context.Context, id string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, identity.NotFoundError{Op: "content.DeletePost", Resource: "post"}
	}
	delete(s.posts, id)
	return p, nil
}

// GetPost returns a post by id.
func (s *MemoryStore) GetPost(ctx context.Context, id string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, identity.NotFoundError{Op: "content.GetPost", Resource: "post"}
	}
	return p, nil
}

// ListAll returns every post ordered by id.
func (s *MemoryStore) ListAll(ctx context.Context) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByOwner returns the posts owned by userID, ordered by id.
func (s *MemoryStore) ListByOwner(ctx context.Context, userID string) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, 8)
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
