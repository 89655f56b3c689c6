package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/mailer"
)

// SignupUsecase defines the business logic of OTP gated account creation.
type SignupUsecase interface {
	// RequestChallenge emails a verification code to an unregistered address and
	// returns the challenge token.
	RequestChallenge(ctx context.Context, email string) (string, error)

	// CompleteSignup verifies the code and creates the account.
	CompleteSignup(ctx context.Context, params CompleteSignupParams) (*model.User, error)
}

// CompleteSignupParams defines the parameters for completing a signup.
type CompleteSignupParams struct {
	Name     string
	Email    string
	Password string
	Gender   model.Gender
	Code     string
	Token    string
}

// SignupPolicy holds the tunables of the signup flow.
type SignupPolicy struct {
	Email         EmailPolicy
	Password      PasswordPolicy
	AvatarBaseURL string
	CodeDigits    int
	CodeTTL       time.Duration
}

type signupUsecase struct {
	userRepo repository.UserRepository
	otp      *OTPChallenger
	hasher   PasswordHasher
	mailer   mailer.Sender
	policy   SignupPolicy
}

// NewSignupUsecase creates a new instance of SignupUsecase.
func NewSignupUsecase(
	userRepo repository.UserRepository,
	otp *OTPChallenger,
	hasher PasswordHasher,
	mailer mailer.Sender,
	policy SignupPolicy,
) SignupUsecase {
	return &signupUsecase{
		userRepo: userRepo,
		otp:      otp,
		hasher:   hasher,
		mailer:   mailer,
		policy:   policy,
	}
}

func (u *signupUsecase) RequestChallenge(ctx context.Context, email string) (string, error) {
	if err := u.policy.Email(email); err != nil {
		return "", err
	}

	if err := u.ensureEmailAvailable(ctx, email); err != nil {
		return "", err
	}

	challenge, err := u.otp.Issue(signupBinding(email), u.policy.CodeDigits, u.policy.CodeTTL)
	if err != nil {
		return "", err
	}

	body := signupCodeEmail(challenge.Code, u.policy.CodeTTL)
	if err := sendCode(ctx, u.mailer, email, "Your Verification Code", body); err != nil {
		return "", err
	}

	return challenge.Token, nil
}

func (u *signupUsecase) CompleteSignup(ctx context.Context, params CompleteSignupParams) (*model.User, error) {
	if err := u.validate(params); err != nil {
		return nil, err
	}

	// Another signup may have completed since the challenge was issued.
	if err := u.ensureEmailAvailable(ctx, params.Email); err != nil {
		return nil, err
	}

	binding := signupBinding(params.Email)
	if err := u.otp.Verify(binding, params.Code, params.Token); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	// Consumed before the insert. If the insert fails the client requests a new code.
	if err := u.otp.Redeem(ctx, binding, params.Code, params.Token); err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         strings.TrimSpace(params.Name),
		Email:        params.Email,
		PasswordHash: passwordHash,
		Gender:       params.Gender,
		Avatar:       DefaultAvatarURL(u.policy.AvatarBaseURL, params.Email),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return user, nil
}

func (u *signupUsecase) validate(params CompleteSignupParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return newValidationError("Name is required")
	}
	if err := u.policy.Email(params.Email); err != nil {
		return err
	}
	if err := u.policy.Password.Check(params.Password); err != nil {
		return err
	}
	if !params.Gender.Valid() {
		return newValidationError("Gender must be one of male, female, non-binary")
	}
	return nil
}

func (u *signupUsecase) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := u.userRepo.GetUserByEmailFold(ctx, strings.TrimSpace(email))
	if err == nil {
		return ErrUserAlreadyExists
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	return err
}

func signupBinding(email string) []string {
	return []string{purposeSignup, email}
}
