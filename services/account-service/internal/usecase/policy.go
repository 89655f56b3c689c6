package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/vasapolrittideah/account-api/shared/validation"
)

// EmailPolicy rejects email addresses that may not register.
type EmailPolicy func(email string) error

// AllowDomains accepts syntactically valid addresses whose domain is one of
// domains. With no domains every valid address is accepted.
func AllowDomains(v *validation.Validator, domains ...string) EmailPolicy {
	allowed := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed[d] = struct{}{}
		}
	}

	return func(email string) error {
		if err := v.Var(email, "required,email"); err != nil {
			return newValidationError("Email must be a valid email address")
		}
		if len(allowed) == 0 {
			return nil
		}

		_, domain, _ := strings.Cut(email, "@")
		if _, ok := allowed[strings.ToLower(domain)]; !ok {
			return newValidationError("Email must use one of the allowed domains: %s", strings.Join(domains, ", "))
		}
		return nil
	}
}

// PasswordPolicy bounds the length of a password in characters, inclusive.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

func (p PasswordPolicy) Check(password string) error {
	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		return newValidationError("Password must be at least %d characters long", p.MinLength)
	}
	if n > p.MaxLength {
		return newValidationError("Password must be at most %d characters long", p.MaxLength)
	}
	return nil
}

// DefaultAvatarURL derives a stable placeholder image URL from an email address.
func DefaultAvatarURL(baseURL, email string) string {
	sum := sha256.Sum256([]byte(normalizeEmail(email)))
	return strings.TrimRight(baseURL, "/") + "/" + hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func namesMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
