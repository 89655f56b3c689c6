package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/mailer"
)

// PasswordResetUsecase defines the business logic for OTP based password reset.
type PasswordResetUsecase interface {
	// RequestReset checks name and email against the stored account and emails a
	// verification code. It returns the challenge token.
	RequestReset(ctx context.Context, name, email string) (string, error)

	// CompleteReset verifies the code and replaces the password. An unknown email
	// completes silently so the endpoint cannot be used to enumerate accounts.
	CompleteReset(ctx context.Context, params CompleteResetParams) error
}

// CompleteResetParams defines the parameters for completing a password reset.
type CompleteResetParams struct {
	Email       string
	Code        string
	Token       string
	NewPassword string
}

// PasswordResetPolicy holds the tunables of the reset flow.
type PasswordResetPolicy struct {
	Password   PasswordPolicy
	CodeDigits int
	CodeTTL    time.Duration
}

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	otp      *OTPChallenger
	hasher   PasswordHasher
	mailer   mailer.Sender
	policy   PasswordResetPolicy
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	otp *OTPChallenger,
	hasher PasswordHasher,
	mailer mailer.Sender,
	policy PasswordResetPolicy,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		otp:      otp,
		hasher:   hasher,
		mailer:   mailer,
		policy:   policy,
	}
}

func (u *passwordResetUsecase) RequestReset(ctx context.Context, name, email string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return "", newValidationError("Name and email are required")
	}

	user, err := u.userRepo.GetUserByEmailFold(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if !namesMatch(name, user.Name) {
		return "", ErrNameMismatch
	}

	challenge, err := u.otp.Issue(resetBinding(email), u.policy.CodeDigits, u.policy.CodeTTL)
	if err != nil {
		return "", err
	}

	body := resetCodeEmail(user.Name, challenge.Code, u.policy.CodeTTL)
	if err := sendCode(ctx, u.mailer, user.Email, "Reset Your Password - Verification Code", body); err != nil {
		return "", err
	}

	return challenge.Token, nil
}

func (u *passwordResetUsecase) CompleteReset(ctx context.Context, params CompleteResetParams) error {
	if strings.TrimSpace(params.Email) == "" || params.Code == "" || params.Token == "" {
		return newValidationError("All fields are required")
	}

	if err := u.policy.Password.Check(params.NewPassword); err != nil {
		return err
	}

	binding := resetBinding(params.Email)
	if err := u.otp.Verify(binding, params.Code, params.Token); err != nil {
		return err
	}

	passwordHash, err := u.hasher.Hash(params.NewPassword)
	if err != nil {
		return err
	}

	// Consumed before the write so a replay cannot race the update. If the
	// write fails the client requests a new code.
	if err := u.otp.Redeem(ctx, binding, params.Code, params.Token); err != nil {
		return err
	}

	err = u.userRepo.UpdatePasswordByEmailFold(ctx, strings.TrimSpace(params.Email), passwordHash)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}

func resetBinding(email string) []string {
	return []string{purposePasswordReset, normalizeEmail(email)}
}
