// Package graph exposes quill's operations over GraphQL.
//
// Resolvers are thin orchestration: extract the caller identity, invoke the
// credential codec or the content service, shape the store result. All real
// authorization logic lives in cmd/internal/content; all identity extraction
// in cmd/internal/auth.
package graph

import (
	"context"
	"log/slog"
	"net/http"

	"quill/cmd/identity"
	"quill/cmd/internal/auth"
	"quill/cmd/internal/content"
	"quill/cmd/security/password"
)

type ctxKey int

const requestKey ctxKey = 0

// WithRequest stashes the raw inbound request in the context so resolvers can
// derive the caller identity from its headers.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

func requestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey).(*http.Request)
	return r, ok
}

// userView is the API shape of a user. The stored credential is never part
// of it.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// postView is the API shape of a post. ownerID feeds the Post.user relation
// resolver and is not itself exposed as a field.
type postView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	ownerID string
}

func toUserView(u identity.User) userView {
	return userView{ID: u.ID, Username: u.Username}
}

func toPostView(p content.Post) postView {
	return postView{ID: p.ID, Title: p.Title, Description: p.Description, ownerID: p.UserID}
}

func toPostViews(posts []content.Post) []postView {
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostView(p))
	}
	return out
}

// Resolver composes the identity extractor, credential codec, authorization
// guard and stores into the handler for each exposed operation.
type Resolver struct {
	log *slog.Logger

	users    identity.Store
	posts    *content.Service
	codec    password.Codec
	strategy auth.Strategy

	// dummyHash makes sign-in timing independent of username existence.
	dummyHash string
}

// NewResolver constructs the resolver set.
func NewResolver(log *slog.Logger, users identity.Store, posts *content.Service, codec password.Codec, strategy auth.Strategy) *Resolver {
	if log == nil {
		log = slog.Default()
	}

	r := &Resolver{
		log:      log,
		users:    users,
		posts:    posts,
		codec:    codec,
		strategy: strategy,
	}

	if hash, err := codec.Hash("dummy-password-for-timing-only"); err == nil {
		r.dummyHash = hash
	}
	return r
}

// callerID derives the caller's user id from the request in ctx.
func (r *Resolver) callerID(ctx context.Context) (string, error) {
	req, ok := requestFrom(ctx)
	if !ok {
		return "", identity.OpError{
			Op:   "graph.callerID",
			Kind: identity.ErrUnauthenticated,
			Msg:  "you must be logged in to do that",
		}
	}
	return r.strategy.CallerID(req)
}

// SignUp hashes the password and creates the user. A taken username fails
// with a conflict; the store enforces uniqueness.
func (r *Resolver) SignUp(ctx context.Context, username, plaintext string) (userView, error) {
	const op = "graph.SignUp"

	if username == "" {
		return userView{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "username is required"}
	}

	taken, err := r.users.UsernameExists(ctx, username)
	if err != nil {
		return userView{}, err
	}
	if taken {
		return userView{}, identity.ConflictError{Op: op, Field: "username"}
	}

	hash, err := r.codec.Hash(plaintext)
	if err != nil {
		return userView{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: err.Error()}
	}

	u, err := r.users.CreateUser(ctx, identity.CreateUserInput{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return userView{}, err
	}

	r.log.Info("graph.signup", "user_id", u.ID)
	return toUserView(u), nil
}

// SignIn verifies the password against the stored credential and returns the
// user. An unknown username and a wrong password are distinct failures.
func (r *Resolver) SignIn(ctx context.Context, username, plaintext string) (userView, error) {
	const op = "graph.SignIn"

	ua, err := r.users.GetUserAuthByUsername(ctx, username)
	if err != nil {
		// Timing resistance: perform a dummy verify when the user is missing.
		if identity.IsNotFound(err) && r.dummyHash != "" {
			_, _ = r.codec.Verify(r.dummyHash, plaintext)
		}
		return userView{}, err
	}

	ok, err := r.codec.Verify(ua.PasswordHash, plaintext)
	if err != nil || !ok {
		return userView{}, identity.OpError{Op: op, Kind: identity.ErrInvalidCredentials, Msg: "invalid credentials"}
	}

	r.log.Info("graph.signin", "user_id", ua.User.ID)
	return toUserView(ua.User), nil
}

// Me returns the caller's user, or nil (no error) when the identity header
// names a user that does not exist.
func (r *Resolver) Me(ctx context.Context) (*userView, error) {
	callerID, err := r.callerID(ctx)
	if err != nil {
		return nil, err
	}

	u, err := r.users.GetUserByID(ctx, callerID)
	if err != nil {
		if identity.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	v := toUserView(u)
	return &v, nil
}

// AllPosts returns every post. No identity required.
func (r *Resolver) AllPosts(ctx context.Context) ([]postView, error) {
	posts, err := r.posts.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return toPostViews(posts), nil
}

// CreatePost creates a post owned by the caller.
func (r *Resolver) CreatePost(ctx context.Context, title, description string) (postView, error) {
	callerID, err := r.callerID(ctx)
	if err != nil {
		return postView{}, err
	}

	p, err := r.posts.CreatePost(ctx, callerID, title, description)
	if err != nil {
		return postView{}, err
	}
	return toPostView(p), nil
}

// EditPost updates a post under the configured ownership policy.
func (r *Resolver) EditPost(ctx context.Context, postID, title, description string) (postView, error) {
	callerID, err := r.callerID(ctx)
	if err != nil {
		return postView{}, err
	}

	p, err := r.posts.EditPost(ctx, callerID, postID, title, description)
	if err != nil {
		return postView{}, err
	}
	return toPostView(p), nil
}

// DeletePost removes a post under the configured ownership policy.
func (r *Resolver) DeletePost(ctx context.Context, postID string) (postView, error) {
	callerID, err := r.callerID(ctx)
	if err != nil {
		return postView{}, err
	}

	p, err := r.posts.DeletePost(ctx, callerID, postID)
	if err != nil {
		return postView{}, err
	}
	return toPostView(p), nil
}

// PostsForUser resolves the User.yourPosts relation. It trusts the parent
// user; no identity is required.
func (r *Resolver) PostsForUser(ctx context.Context, userID string) ([]postView, error) {
	posts, err := r.posts.PostsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPostViews(posts), nil
}

// OwnerForPost resolves the Post.user relation.
func (r *Resolver) OwnerForPost(ctx context.Context, ownerID string) (userView, error) {
	u, err := r.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return userView{}, err
	}
	return toUserView(u), nil
}
