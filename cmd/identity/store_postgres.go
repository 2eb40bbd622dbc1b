package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements user persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Uniqueness of username_norm is delegated to the unique constraint; a
//   violation is mapped to ConflictError.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the identity store (default "quill").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
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
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// CreateUser creates a new user and its credential transactionally.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	users := pgIdent(s.schema, "users")
	creds := pgIdent(s.schema, "user_credentials")

	norm := NormalizeUsername(username)

	_, err = tx.Exec(ctx,
		`INSERT INTO `+users+` (id, username, username_norm, created_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, username, norm, now,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return User{}, ConflictError{Op: op, Field: "username"}
		}
		return User{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+creds+` (user_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		userID, in.PasswordHash, now,
	)
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}

	return User{
		ID:           userID,
		Username:     username,
		UsernameNorm: norm,
		CreatedAt:    now,
	}, nil
}

// GetUserByID returns the user with the given id.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "id is required"}
	}

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, username_norm, created_at FROM `+users+` WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.UsernameNorm, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByUsername resolves a user by normalized username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.GetUserByUsername"

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, username_norm, created_at FROM `+users+` WHERE username_norm = $1`,
		NormalizeUsername(username),
	).Scan(&u.ID, &u.Username, &u.UsernameNorm, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// GetUserAuthByUsername resolves a user plus stored credential for sign-in.
func (s *PostgresStore) GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error) {
	const op = "identity.GetUserAuthByUsername"

	users := pgIdent(s.schema, "users")
	creds := pgIdent(s.schema, "user_credentials")

	var ua UserAuth
	err := s.pool.QueryRow(ctx,
		`SELECT u.id, u.username, u.username_norm, u.created_at, c.password_hash
		   FROM `+users+` u
		   JOIN `+creds+` c ON c.user_id = u.id
		  WHERE u.username_norm = $1`,
		NormalizeUsername(username),
	).Scan(&ua.User.ID, &ua.User.Username, &ua.User.UsernameNorm, &ua.User.CreatedAt, &ua.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
		}
		return UserAuth{}, err
	}
	return ua, nil
}

// UsernameExists reports whether the normalized username is taken.
func (s *PostgresStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	users := pgIdent(s.schema, "users")

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+users+` WHERE username_norm = $1)`,
		NormalizeUsername(username),
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
