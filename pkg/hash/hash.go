// Package hash verifies stored password hashes. New hashes are always bcrypt; older
// werkzeug (scrypt, pbkdf2) and argon2id encodings are still accepted so they can be
// upgraded on the next successful login.
package hash

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidHash = errors.New("invalid hash format")

type Scheme string

const (
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeScrypt   Scheme = "scrypt"
	SchemePBKDF2   Scheme = "pbkdf2"
	SchemeArgon2id Scheme = "argon2id"
	SchemeUnknown  Scheme = "unknown"
)

// Identify names the scheme of an encoded hash by its prefix.
func Identify(encoded string) Scheme {
	switch {
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(encoded, "scrypt:"), strings.HasPrefix(encoded, "scrypt$"):
		return SchemeScrypt
	case strings.HasPrefix(encoded, "pbkdf2:"):
		return SchemePBKDF2
	case strings.HasPrefix(encoded, "$argon2id$"):
		return SchemeArgon2id
	default:
		return SchemeUnknown
	}
}

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher; out of range costs fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks password against encoded. needsRehash is true when the password
// matched a hash that is not bcrypt at the configured cost.
func (h *Hasher) Verify(password, encoded string) (ok bool, needsRehash bool, err error) {
	switch Identify(encoded) {
	case SchemeBcrypt:
		if !bcryptMatch(password, encoded) {
			return false, false, nil
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		return true, err == nil && cost < h.cost, nil
	case SchemeScrypt:
		ok, err = verifyWerkzeugScrypt(password, encoded)
	case SchemePBKDF2:
		ok, err = verifyWerkzeugPBKDF2(password, encoded)
	case SchemeArgon2id:
		ok, err = verifyArgon2id(password, encoded)
	default:
		// unprefixed hashes written by older releases
		ok = bcryptMatch(password, encoded)
	}
	if err != nil {
		return false, false, err
	}
	return ok, ok, nil
}

func bcryptMatch(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
