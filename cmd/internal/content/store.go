// Package content implements quill's post domain: the post model, its
// persistence boundary, and the service that guards mutations.
package content

import (
	"context"
	"time"
)

// Post is a user-owned piece of content. UserID is the owning user; every
// post has exactly one owner at all times.
type Post struct {
	ID          string
	Title       string
	Description string
	UserID      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePostInput creates a post connected to an owner.
type CreatePostInput struct {
	Title       string
	Description string
	OwnerID     string
	Now         time.Time
}

// UpdatePostInput rewrites a post's fields and re-connects its owner.
// OwnerID is whatever the service decided the owner should be after the
// mutation; under the default policy that is the caller.
type UpdatePostInput struct {
	PostID      string
	Title       string
	Description string
	OwnerID     string
	Now         time.Time
}

// Store is the post persistence boundary.
// The posts->users owner link is enforced here: connecting a post to a
// nonexistent user fails with identity.NotFoundError.
type Store interface {
	CreatePost(ctx context.Context, in CreatePostInput) (Post, error)
	UpdatePost(ctx context.Context, in UpdatePostInput) (Post, error)

	// DeletePost removes a post and returns its last state.
	DeletePost(ctx context.Context, id string) (Post, error)

	GetPost(ctx context.Context, id string) (Post, error)

	// ListAll returns every post, ordered by id (ULIDs sort by creation time).
	ListAll(ctx context.Context) ([]Post, error)

	// ListByOwner returns the posts owned by a user.
	ListByOwner(ctx context.Context, userID string) ([]Post, error)
}
