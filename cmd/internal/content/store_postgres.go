package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/cmd/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements post persistence over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// The posts.user_id foreign key enforces the owner link; violations are
// mapped to identity.NotFoundError.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema used by the content store (default "quill").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("content: empty schema")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "quill",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("content: nil pool")
	}
	return st, nil
}

// CreatePost inserts a post owned by in.OwnerID.
func (s *PostgresStore) CreatePost(ctx context.Context, in CreatePostInput) (Post, error) {
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

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Post{}, err
	}

	posts := s.ident("posts")

	var p Post
	err = s.pool.QueryRow(ctx,
		`INSERT INTO `+posts+` (id, title, description, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id, title, description, user_id, created_at, updated_at`,
		id, title, in.Description, in.OwnerID, now,
	).Scan(&p.ID, &p.Title, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgIsForeignKeyViolation(err) {
			return Post{}, identity.NotFoundError{Op: op, Resource: "user"}
		}
		return Post{}, err
	}
	return p, nil
}

// UpdatePost rewrites a post's fields and owner connection.
func (s *PostgresStore) UpdatePost(ctx context.Context, in UpdatePostInput) (Post, error) {
	const op = "content.UpdatePost"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Post{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "title is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	posts := s.ident("posts")

	var p Post
	err := s.pool.QueryRow(ctx,
		`UPDATE `+posts+`
		    SET title = $2, description = $3, user_id = $4, updated_at = $5
		  WHERE id = $1
		 RETURNING id, title, description, user_id, created_at, updated_at`,
		in.PostID, title, in.Description, in.OwnerID, now,
	).Scan(&p.ID, &p.Title, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, identity.NotFoundError{Op: op, Resource: "post"}
		}
		if pgIsForeignKeyViolation(err) {
			return Post{}, identity.NotFoundError{Op: op, Resource: "user"}
		}
		return Post{}, err
	}
	return p, nil
}

// DeletePost removes a post and returns its last state.
func (s *PostgresStore) DeletePost(ctx context.Context, id string) (Post, error) {
	const op = "content.DeletePost"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	posts := s.ident("posts")

	var p Post
	err := s.pool.QueryRow(ctx,
		`DELETE FROM `+posts+` WHERE id = $1
		 RETURNING id, title, description, user_id, created_at, updated_at`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, identity.NotFoundError{Op: op, Resource: "post"}
		}
		return Post{}, err
	}
	return p, nil
}

// GetPost returns a post by id.
func (s *PostgresStore) GetPost(ctx context.Context, id string) (Post, error) {
	const op = "content.GetPost"

	posts := s.ident("posts")

	var p Post
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		   FROM `+posts+` WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, identity.NotFoundError{Op: op, Resource: "post"}
		}
		return Post{}, err
	}
	return p, nil
}

// ListAll returns every post ordered by id.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Post, error) {
	posts := s.ident("posts")

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		   FROM `+posts+` ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ListByOwner returns the posts owned by userID, ordered by id.
func (s *PostgresStore) ListByOwner(ctx context.Context, userID string) ([]Post, error) {
	posts := s.ident("posts")

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		   FROM `+posts+` WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]Post, error) {
	out := make([]Post, 0, 16)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}
