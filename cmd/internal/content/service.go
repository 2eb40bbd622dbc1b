package content

import (
	"context"
	"log/slog"

	"quill/cmd/identity"
)

// Publisher receives post lifecycle events after a successful mutation.
// feed.Hub implements it; a nil publisher disables events.
type Publisher interface {
	PostCreated(p Post)
	PostUpdated(p Post)
	PostDeleted(p Post)
}

// Service guards post mutations with the ownership policy and publishes
// lifecycle events.
//
// Ownership policy:
//   - ownerOnly=false (default) reproduces the original behavior: any
//     authenticated caller may edit or delete any post, and an edit
//     re-connects the post to the caller as owner.
//   - ownerOnly=true hardens mutations: edit/delete require the caller to be
//     the current owner and fail with identity.ErrForbidden otherwise; the
//     owner is never reassigned.
type Service struct {
	log   *slog.Logger
	store Store
	feed  Publisher

	ownerOnly bool
}

// NewService constructs a post service. feed may be nil.
func NewService(log *slog.Logger, store Store, feed Publisher, ownerOnly bool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:       log,
		store:     store,
		feed:      feed,
		ownerOnly: ownerOnly,
	}
}

func unauthenticated(op string) error {
	return identity.OpError{
		Op:   op,
		Kind: identity.ErrUnauthenticated,
		Msg:  "you must be logged in to do that",
	}
}

// CreatePost creates a post whose owner is unconditionally the caller.
func (s *Service) CreatePost(ctx context.Context, callerID, title, description string) (Post, error) {
	const op = "content.Service.CreatePost"

	if callerID == "" {
		return Post{}, unauthenticated(op)
	}

	p, err := s.store.CreatePost(ctx, CreatePostInput{
		Title:       title,
		Description: description,
		OwnerID:     callerID,
	})
	if err != nil {
		return Post{}, err
	}

	s.log.Info("content.post.created", "post_id", p.ID, "user_id", p.UserID)
	if s.feed != nil {
		s.feed.PostCreated(p)
	}
	return p, nil
}

// EditPost updates a post's fields. Under the default policy the post is
// re-connected to the caller as owner, whoever owned it before.
func (s *Service) EditPost(ctx context.Context, callerID, postID, title, description string) (Post, error) {
	const op = "content.Service.EditPost"

	if callerID == "" {
		return Post{}, unauthenticated(op)
	}

	owner := callerID
	if s.ownerOnly {
		current, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return Post{}, err
		}
		if current.UserID != callerID {
			return Post{}, identity.OpError{Op: op, Kind: identity.ErrForbidden, Msg: "you do not own this post"}
		}
		owner = current.UserID
	}

	p, err := s.store.UpdatePost(ctx, UpdatePostInput{
		PostID:      postID,
		Title:       title,
		Description: description,
		OwnerID:     owner,
	})
	if err != nil {
		return Post{}, err
	}

	s.log.Info("content.post.updated", "post_id", p.ID, "user_id", p.UserID)
	if s.feed != nil {
		s.feed.PostUpdated(p)
	}
	return p, nil
}

// DeletePost removes a post. Under the default policy any authenticated
// caller may delete any post.
func (s *Service) DeletePost(ctx context.Context, callerID, postID string) (Post, error) {
	const op = "content.Service.DeletePost"

	if callerID == "" {
		return Post{}, unauthenticated(op)
	}

	if s.ownerOnly {
		current, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return Post{}, err
		}
		if current.UserID != callerID {
			return Post{}, identity.OpError{Op: op, Kind: identity.ErrForbidden, Msg: "you do not own this post"}
		}
	}

	p, err := s.store.DeletePost(ctx, postID)
	if err != nil {
		return Post{}, err
	}

	s.log.Info("content.post.deleted", "post_id", p.ID, "user_id", p.UserID)
	if s.feed != nil {
		s.feed.PostDeleted(p)
	}
	return p, nil
}

// Posts returns every post.
func (s *Service) Posts(ctx context.Context) ([]Post, error) {
	return s.store.ListAll(ctx)
}

// PostsByOwner returns the posts owned by userID.
func (s *Service) PostsByOwner(ctx context.Context, userID string) ([]Post, error) {
	return s.store.ListByOwner(ctx, userID)
}
