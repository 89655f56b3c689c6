package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// DefaultSecret is the well-known fallback secret. Running with it outside of
// development is a misconfiguration.
const DefaultSecret = "fallback_secret_key"

var ErrEmptySecret = errors.New("signer secret must not be empty")

// SecretSigner produces and checks HMAC-SHA256 signatures over a process-wide secret.
type SecretSigner struct {
	secret []byte
}

// NewSecretSigner creates a new SecretSigner instance.
func NewSecretSigner(secret string) (*SecretSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &SecretSigner{secret: []byte(secret)}, nil
}

// Sign returns the hex encoded HMAC-SHA256 of message.
func (s *SecretSigner) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature of message and compares it in constant time.
func (s *SecretSigner) Verify(message, signature string) bool {
	return hmac.Equal([]byte(s.Sign(message)), []byte(signature))
}

// IsDefault reports whether the signer runs on DefaultSecret.
func (s *SecretSigner) IsDefault() bool {
	return string(s.secret) == DefaultSecret
}
