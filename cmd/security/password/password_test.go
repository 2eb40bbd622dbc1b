package password

import "testing"

// testCodec lowers the work factor so the suite stays fast; the format and
// comparison paths are identical to production settings.
func testCodec() Codec {
	c := DefaultCodec()
	c.Params.MemoryKiB = 8 * 1024
	c.Params.Iterations = 1
	return c
}

func TestHashAndVerify_OK(t *testing.T) {
	c := testCodec()

	h, err := c.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := c.Verify(h, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	c := testCodec()

	h, err := c.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	// Mismatch is a boolean outcome, not an error.
	ok, err := c.Verify(h, "wrong password entirely")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestHash_Salted(t *testing.T) {
	c := testCodec()

	h1, err := c.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := c.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same input must differ (random salt)")
	}
}

func TestValidate_MinMax(t *testing.T) {
	c := testCodec()
	c.MinLength = 8
	c.MaxLength = 16

	if err := c.Validate("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := c.Validate("this password is definitely too long"); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := c.Validate("goodpassw0rd"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if _, err := c.Hash(""); err != ErrPasswordTooShort {
		t.Fatalf("Hash must reject empty plaintext, got %v", err)
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	c := testCodec()

	for _, bad := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaGhhc2hoYXNoaGFzaA",
	} {
		ok, err := c.Verify(bad, "whatever")
		if err != ErrInvalidHash {
			t.Fatalf("Verify(%q): expected ErrInvalidHash, got %v", bad, err)
		}
		if ok {
			t.Fatalf("Verify(%q): expected false", bad)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	c := testCodec()

	// A hash claiming far more memory than configured must be refused before
	// any key derivation happens.
	big := "$argon2id$v=19$m=1048576,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA"
	ok, err := c.Verify(big, "whatever")
	if err != ErrInvalidHash || ok {
		t.Fatalf("expected (false, ErrInvalidHash), got (%v, %v)", ok, err)
	}
}
