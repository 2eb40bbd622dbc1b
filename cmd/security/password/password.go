package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

const argon2Version = 19 // argon2.Version is 0x13 (19)

// Validate checks the plaintext length policy. Callers must reject invalid
// plaintext before hashing; Hash enforces this as well.
func (c Codec) Validate(plaintext string) error {
	// Count characters (runes), not bytes, to be user-friendly.
	n := utf8.RuneCountInString(plaintext)

	if n < c.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash hashes a plaintext password using Argon2id and returns an encoded
// hash string:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
func (c Codec) Hash(plaintext string) (string, error) {
	if err := c.Validate(plaintext); err != nil {
		return "", err
	}

	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		c.Params.Iterations,
		c.Params.MemoryKiB,
		c.Params.Parallelism,
		c.Params.KeyLength,
	)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		c.Params.MemoryKiB,
		c.Params.Iterations,
		c.Params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify checks whether plaintext matches the given encoded hash.
// Returns (true, nil) for a match, (false, nil) for a mismatch, and
// (false, ErrInvalidHash) for malformed/unsupported hashes.
func (c Codec) Verify(encodedHash, plaintext string) (bool, error) {
	params, salt, expected, err := decode(encodedHash)
	if err != nil {
		return false, err
	}

	// Anti-DoS boundary: refuse to verify hashes whose cost parameters
	// greatly exceed our configured maximums. Hashes created under older,
	// smaller settings still verify.
	if params.MemoryKiB > c.Params.MemoryKiB*2 ||
		params.Iterations > c.Params.Iterations*2 ||
		params.Parallelism > c.Params.Parallelism*2 {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 -- expected length is bounded by decode(); safe conversion.
	)

	// Constant-time compare.
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// decode parses the encoded hash and returns params, salt and expected key.
func decode(encoded string) (Params, []byte, []byte, error) {
	// Expected: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if len(salt) < 8 || len(salt) > 64 || len(key) < 16 || len(key) > 128 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	return Params{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par), // #nosec G115 -- par is bounded to [1..255] above; safe conversion.
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}, salt, key, nil
}
