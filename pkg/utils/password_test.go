package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := VerifyPassword("pw123456", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatal("correct password did not verify")
	}

	ok, err = VerifyPassword("wrongpass", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical; salt is not random")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"", "plaintext", "$bcrypt$whatever", "$argon2id$v=19$m=65536,t=3,p=2$!!!$???"} {
		if ok, err := VerifyPassword("pw", hash); err == nil || ok {
			t.Fatalf("hash %q: expected error, got ok=%v err=%v", hash, ok, err)
		}
	}
}
