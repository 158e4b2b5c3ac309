package hash

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	werkzeugScrypt = "scrypt:1024:8:1$abcdEFGH12345678$f3932af31076624d36145897d349b207c81ec32bb1c63e5f4dd62634a04aaab9a4902da900d93fe3835d62841920f73ec9d71fb40e615a36ba5bdecd2fb0ca17"
	werkzeugPBKDF2 = "pbkdf2:sha256:1000$saltsalt$69938bc3481954fbd74770fbde78b082cc54adb58ffa74df4f94dcb340bd2899"
)

func argon2Hash(password string) string {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte(password), salt, 1, 8*1024, 1, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 8*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		encoded string
		want    Scheme
	}{
		{"$2b$10$abcdefghijklmnopqrstuv", SchemeBcrypt},
		{"$2a$10$abcdefghijklmnopqrstuv", SchemeBcrypt},
		{"$2y$10$abcdefghijklmnopqrstuv", SchemeBcrypt},
		{werkzeugScrypt, SchemeScrypt},
		{werkzeugPBKDF2, SchemePBKDF2},
		{"$argon2id$v=19$m=1,t=1,p=1$a$b", SchemeArgon2id},
		{"plain", SchemeUnknown},
	}
	for _, tt := range tests {
		if got := Identify(tt.encoded); got != tt.want {
			t.Errorf("Identify(%q) = %q, want %q", tt.encoded, got, tt.want)
		}
	}
}

func TestHashProducesBcrypt(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	encoded, err := h.Hash("segredo123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if Identify(encoded) != SchemeBcrypt {
		t.Fatalf("Hash() = %q, want bcrypt", encoded)
	}

	ok, rehash, err := h.Verify("segredo123", encoded)
	if err != nil || !ok || rehash {
		t.Errorf("Verify(match) = %v, %v, %v, want true, false, nil", ok, rehash, err)
	}
	ok, _, err = h.Verify("errado", encoded)
	if err != nil || ok {
		t.Errorf("Verify(mismatch) = %v, %v, want false, nil", ok, err)
	}
}

func TestLowCostBcryptNeedsRehash(t *testing.T) {
	encoded, err := NewHasher(bcrypt.MinCost).Hash("segredo123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	ok, rehash, err := NewHasher(bcrypt.MinCost+1).Verify("segredo123", encoded)
	if err != nil || !ok || !rehash {
		t.Errorf("Verify() = %v, %v, %v, want true, true, nil", ok, rehash, err)
	}
}

func TestLegacySchemesMatchAndNeedRehash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for name, encoded := range map[string]string{
		"scrypt":   werkzeugScrypt,
		"pbkdf2":   werkzeugPBKDF2,
		"argon2id": argon2Hash("segredo123"),
	} {
		t.Run(name, func(t *testing.T) {
			ok, rehash, err := h.Verify("segredo123", encoded)
			if err != nil || !ok || !rehash {
				t.Errorf("Verify(match) = %v, %v, %v, want true, true, nil", ok, rehash, err)
			}
			ok, rehash, err = h.Verify("errado", encoded)
			if err != nil || ok || rehash {
				t.Errorf("Verify(mismatch) = %v, %v, %v, want false, false, nil", ok, rehash, err)
			}
		})
	}
}

func TestUnprefixedBcryptFallback(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	// bare "$2$" bcrypt is not recognised by prefix
	encoded := strings.Replace(string(raw), "$2a$", "$2$", 1)
	if Identify(encoded) != SchemeUnknown {
		t.Fatalf("Identify(%q) should be unknown", encoded)
	}
	ok, rehash, err := NewHasher(bcrypt.MinCost).Verify("segredo123", encoded)
	if err != nil || !ok || !rehash {
		t.Errorf("Verify() = %v, %v, %v, want true, true, nil", ok, rehash, err)
	}
}

func TestMalformedLegacyHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, encoded := range []string{
		"scrypt:1024:8$salt",
		"scrypt:x:8:1$salt$00ff",
		"pbkdf2:md5:1000$salt$00ff",
		"pbkdf2:sha256:1000$salt$zz",
		"$argon2id$v=19$bad",
	} {
		if ok, _, err := h.Verify("segredo123", encoded); err == nil || ok {
			t.Errorf("Verify(%q) = %v, %v, want error", encoded, ok, err)
		}
	}
}
