// Package password is quill's credential codec: one-way hashing of plaintext
// passwords at sign-up and verification at sign-in.
//
// It implements Argon2id with a PHC-style encoded string format:
// - Tunable work factor (via environment variables)
// - Constant-time verification; a mismatch is a boolean outcome, not an error
// - Strict hash decoding with anti-DoS parameter bounds
//
// Stored hash strings are treated as untrusted input during Verify and are
// validated accordingly.
package password
