// Package identity implements quill's user identity foundation.
//
// It contains the canonical User model, the persistence boundary for users
// and their stored credentials, ULID generation, and the sentinel error kinds
// shared by the rest of the service.
//
// This package is intentionally dependency-light and security-first.
package identity
