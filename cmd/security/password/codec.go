package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Params controls Argon2id hashing cost. MemoryKiB is in KiB as required by
// argon2.IDKey.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Codec is the single configuration surface for this package: hashing cost
// plus the plaintext length policy applied before hashing.
type Codec struct {
	Params Params

	MinLength int
	MaxLength int
}

// DefaultCodec returns a strong baseline for interactive sign-in.
// Values can be overridden via environment variables.
func DefaultCodec() Codec {
	// CPU-aware parallelism, clamped to [1..4] to keep resource usage
	// predictable in containers.
	threads := runtime.NumCPU()
	if threads < 1 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Codec{
		Params: Params{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 8,
		MaxLength: 256,
	}
}

// FromEnv loads the codec from environment variables.
//
// Env surface:
// - QUILL_PASSWORD_MIN_LEN
// - QUILL_PASSWORD_MAX_LEN
// - QUILL_ARGON2_MEMORY_KIB
// - QUILL_ARGON2_ITERATIONS
// - QUILL_ARGON2_PARALLELISM
// - QUILL_ARGON2_SALT_LEN
// - QUILL_ARGON2_KEY_LEN
func FromEnv() (Codec, error) {
	c := DefaultCodec()

	var err error
	if c.MinLength, err = envInt("QUILL_PASSWORD_MIN_LEN", c.MinLength, 1, 1024); err != nil {
		return Codec{}, err
	}
	if c.MaxLength, err = envInt("QUILL_PASSWORD_MAX_LEN", c.MaxLength, 1, 4096); err != nil {
		return Codec{}, err
	}

	if c.Params.MemoryKiB, err = envUint32("QUILL_ARGON2_MEMORY_KIB", c.Params.MemoryKiB, 8*1024, 1024*1024); err != nil {
		return Codec{}, err
	}
	if c.Params.Iterations, err = envUint32("QUILL_ARGON2_ITERATIONS", c.Params.Iterations, 1, 20); err != nil {
		return Codec{}, err
	}

	par, err := envUint32("QUILL_ARGON2_PARALLELISM", uint32(c.Params.Parallelism), 1, 64)
	if err != nil {
		return Codec{}, err
	}
	if par > 255 {
		return Codec{}, fmt.Errorf("QUILL_ARGON2_PARALLELISM: out of range [1..255]")
	}
	c.Params.Parallelism = uint8(par)

	if c.Params.SaltLength, err = envUint32("QUILL_ARGON2_SALT_LEN", c.Params.SaltLength, 8, 64); err != nil {
		return Codec{}, err
	}
	if c.Params.KeyLength, err = envUint32("QUILL_ARGON2_KEY_LEN", c.Params.KeyLength, 16, 64); err != nil {
		return Codec{}, err
	}

	if c.MinLength > c.MaxLength {
		return Codec{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			c.MinLength, c.MaxLength,
		)
	}

	return c, nil
}

func envInt(key string, def, minVal, maxVal int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	i64, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer", key)
	}
	n := int(i64)
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s: out of range [%d..%d]", key, minVal, maxVal)
	}
	return n, nil
}

func envUint32(key string, def, minVal, maxVal uint32) (uint32, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	u64, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: not an unsigned integer", key)
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("%s: out of range [%d..%d]", key, minVal, maxVal)
	}
	return u, nil
}
