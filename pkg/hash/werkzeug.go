package hash

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// werkzeug defaults
const (
	scryptN       = 1 << 15
	scryptR       = 8
	scryptP       = 1
	pbkdf2DefIter = 600000
)

// splitWerkzeug splits "method$salt$hash" into method parameters, salt and digest.
func splitWerkzeug(encoded string) ([]string, string, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return nil, "", nil, ErrInvalidHash
	}
	digest, err := hex.DecodeString(parts[2])
	if err != nil || len(digest) == 0 {
		return nil, "", nil, ErrInvalidHash
	}
	return strings.Split(parts[0], ":"), parts[1], digest, nil
}

// verifyWerkzeugScrypt checks "scrypt:N:r:p$salt$hexdigest".
func verifyWerkzeugScrypt(password, encoded string) (bool, error) {
	method, salt, digest, err := splitWerkzeug(encoded)
	if err != nil {
		return false, err
	}

	n, r, p := scryptN, scryptR, scryptP
	if len(method) == 4 {
		vals := make([]int, 3)
		for i, s := range method[1:] {
			v, err := strconv.Atoi(s)
			if err != nil || v <= 0 {
				return false, fmt.Errorf("%w: scrypt parameter %q", ErrInvalidHash, s)
			}
			vals[i] = v
		}
		n, r, p = vals[0], vals[1], vals[2]
	} else if len(method) != 1 {
		return false, ErrInvalidHash
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, len(digest))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return subtle.ConstantTimeCompare(key, digest) == 1, nil
}

// verifyWerkzeugPBKDF2 checks "pbkdf2:sha256:iterations$salt$hexdigest".
func verifyWerkzeugPBKDF2(password, encoded string) (bool, error) {
	method, salt, digest, err := splitWerkzeug(encoded)
	if err != nil {
		return false, err
	}
	if len(method) < 2 || len(method) > 3 {
		return false, ErrInvalidHash
	}

	var h func() hash.Hash
	switch method[1] {
	case "sha1":
		h = sha1.New
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return false, fmt.Errorf("%w: unsupported digest %q", ErrInvalidHash, method[1])
	}

	iter := pbkdf2DefIter
	if len(method) == 3 {
		iter, err = strconv.Atoi(method[2])
		if err != nil || iter <= 0 {
			return false, fmt.Errorf("%w: iterations %q", ErrInvalidHash, method[2])
		}
	}

	key := pbkdf2.Key([]byte(password), []byte(salt), iter, len(digest), h)
	return subtle.ConstantTimeCompare(key, digest) == 1, nil
}
