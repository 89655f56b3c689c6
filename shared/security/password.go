package security

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasherConfig holds the argon2id cost parameters.
type PasswordHasherConfig struct {
	TimeCost    uint32
	MemoryCost  uint32
	Parallelism uint8
}

// PasswordHasher derives and checks argon2id password hashes.
type PasswordHasher struct {
	config argon2.Config
}

// NewPasswordHasher creates a new PasswordHasher. Zero values fall back to the
// library defaults.
func NewPasswordHasher(cfg PasswordHasherConfig) *PasswordHasher {
	c := argon2.DefaultConfig()
	if cfg.TimeCost > 0 {
		c.TimeCost = cfg.TimeCost
	}
	if cfg.MemoryCost > 0 {
		c.MemoryCost = cfg.MemoryCost
	}
	if cfg.Parallelism > 0 {
		c.Parallelism = cfg.Parallelism
	}

	return &PasswordHasher{config: c}
}

// Hash returns the encoded argon2id hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// Verify checks password against an encoded hash. The digest comparison is
// constant-time.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
