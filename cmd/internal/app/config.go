package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Identity extraction: "bearer" (Authorization: Bearer <id>) or
	// "header" (raw value of IdentityHeader). Exactly one strategy is live.
	AuthStrategy   string
	IdentityHeader string

	// If true, editPost/deletePost require the caller to own the post.
	// The default reproduces the original unenforced behavior.
	OwnerOnly bool

	// Comma-separated origin patterns allowed to open the /ws feed.
	WSAllowedOrigins string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("QUILL_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("QUILL_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("QUILL_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("QUILL_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("QUILL_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("QUILL_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("QUILL_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("QUILL_DATABASE_URL", ""),
		DBSchema:    EnvString("QUILL_DB_SCHEMA", "quill"),
		DBMaxConns:  EnvInt32("QUILL_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("QUILL_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("QUILL_READINESS_REQUIRE_DB", false),

		AuthStrategy:   EnvString("QUILL_AUTH_STRATEGY", "bearer"),
		IdentityHeader: EnvString("QUILL_AUTH_IDENTITY_HEADER", ""),

		OwnerOnly: EnvBool("QUILL_OWNER_ONLY", false),

		WSAllowedOrigins: EnvString("QUILL_WS_ALLOWED_ORIGINS", ""),
	}
}
