package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/security"
)

const (
	purposeSignup        = "signup"
	purposePasswordReset = "password-reset"

	tokenDelimiter = "."
)

// Challenge is an issued one-time code and the token that lets the server
// verify it later without storing anything.
type Challenge struct {
	Code      string
	Token     string
	ExpiresAt time.Time
}

// OTPChallenger issues and verifies stateless one-time code challenges.
//
// A token has the form "<hexSignature>.<epochMillis>" where the signature is the
// HMAC of the binding fields, the code and the expiry. Redemption is optionally
// recorded in a ledger so that a token can be used only once.
type OTPChallenger struct {
	signer *security.SecretSigner
	ledger repository.OTPRedemptionRepository
	now    func() time.Time
}

// NewOTPChallenger creates a new OTPChallenger. ledger may be nil, in which case
// replay is bounded only by expiry.
func NewOTPChallenger(signer *security.SecretSigner, ledger repository.OTPRedemptionRepository) *OTPChallenger {
	return &OTPChallenger{
		signer: signer,
		ledger: ledger,
		now:    time.Now,
	}
}

// Issue draws a code of the given digit width and binds it to binding until now+ttl.
func (c *OTPChallenger) Issue(binding []string, digits int, ttl time.Duration) (*Challenge, error) {
	code, err := generateCode(digits)
	if err != nil {
		return nil, err
	}

	expiresAt := c.now().Add(ttl).UnixMilli()
	signature := c.signer.Sign(challengeMessage(binding, code, expiresAt))

	return &Challenge{
		Code:      code,
		Token:     signature + tokenDelimiter + strconv.FormatInt(expiresAt, 10),
		ExpiresAt: time.UnixMilli(expiresAt),
	}, nil
}

// Verify checks that token was issued for binding and code and has not expired.
func (c *OTPChallenger) Verify(binding []string, code, token string) error {
	_, _, err := c.verify(binding, code, token)
	return err
}

// Redeem verifies the challenge and consumes it in the ledger, if one is configured.
func (c *OTPChallenger) Redeem(ctx context.Context, binding []string, code, token string) error {
	signature, expiresAt, err := c.verify(binding, code, token)
	if err != nil {
		return err
	}

	if c.ledger == nil {
		return nil
	}

	if err := c.ledger.Redeem(ctx, signature, time.UnixMilli(expiresAt)); err != nil {
		if errors.Is(err, repository.ErrAlreadyRedeemed) {
			return ErrOTPAlreadyUsed
		}
		return fmt.Errorf("redeem otp: %w", err)
	}

	return nil
}

func (c *OTPChallenger) verify(binding []string, code, token string) (string, int64, error) {
	signature, expiry, ok := strings.Cut(token, tokenDelimiter)
	if !ok || signature == "" {
		return "", 0, ErrInvalidOTP
	}

	expiresAt, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", 0, ErrInvalidOTP
	}

	if c.now().UnixMilli() > expiresAt {
		return "", 0, ErrOTPExpired
	}

	if !c.signer.Verify(challengeMessage(binding, code, expiresAt), signature) {
		return "", 0, ErrInvalidOTP
	}

	return signature, expiresAt, nil
}

func challengeMessage(binding []string, code string, expiresAt int64) string {
	parts := make([]string, 0, len(binding)+2)
	parts = append(parts, binding...)
	parts = append(parts, code, strconv.FormatInt(expiresAt, 10))
	return strings.Join(parts, tokenDelimiter)
}

// generateCode returns a uniformly random integer in [10^(digits-1), 10^digits-1].
func generateCode(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("unsupported otp width %d", digits)
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
