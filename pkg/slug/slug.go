// Package slug builds and checks the URL-safe tenant identifiers used in public links.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 3
	MaxLength = 100
)

var (
	validRegex   = regexp.MustCompile(`^[a-z0-9-]+$`)
	invalidChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Valid reports whether s is lowercase letters, digits and hyphens, 3 to 100 long.
func Valid(s string) bool {
	return len(s) >= MinLength && len(s) <= MaxLength && validRegex.MatchString(s)
}

// Generate derives a slug from free text: accents are stripped, runs of other
// characters become single hyphens. The result may still be too short to be Valid.
func Generate(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	s := invalidChars.ReplaceAllString(strings.ToLower(plain), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}

// FromEmailDomain derives a slug from the domain part of an e-mail address,
// e.g. "ana@loja-azul.com.br" gives "loja-azul".
func FromEmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return Generate(email)
	}
	domain := email[at+1:]
	if dot := strings.Index(domain, "."); dot > 0 {
		domain = domain[:dot]
	}
	return Generate(domain)
}
