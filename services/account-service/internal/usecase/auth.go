package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/auth"
)

// PasswordHasher derives and checks one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// AuthUsecase defines the interface for session related use cases.
type AuthUsecase interface {
	// SignIn checks credentials and mints a session.
	SignIn(ctx context.Context, params SignInParams) (*Session, error)

	// RefreshClaims re-reads the user behind a live session and mints a session
	// carrying the current profile. The session lifetime is not extended.
	RefreshClaims(ctx context.Context, current *auth.SessionClaims) (*Session, error)
}

// SignInParams defines the parameters for user sign-in.
type SignInParams struct {
	Email    string
	Password string
}

// Session is a signed session token and the claims it carries.
type Session struct {
	Token  string
	Claims *auth.SessionClaims
}

type authUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	sessions auth.SessionManager

	// dummyHash is verified against when the user does not exist.
	dummyHash string
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	sessions auth.SessionManager,
) (AuthUsecase, error) {
	dummyHash, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &authUsecase{
		userRepo:  userRepo,
		hasher:    hasher,
		sessions:  sessions,
		dummyHash: dummyHash,
	}, nil
}

func (u *authUsecase) SignIn(ctx context.Context, params SignInParams) (*Session, error) {
	if params.Email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing work as a real check.
			_, _ = u.hasher.Verify(params.Password, u.dummyHash)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := u.hasher.Verify(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		return nil, err
	}

	return u.mint(claimsFor(user, jwt.RegisteredClaims{}))
}

func (u *authUsecase) RefreshClaims(ctx context.Context, current *auth.SessionClaims) (*Session, error) {
	user, err := u.userRepo.GetUser(ctx, current.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	registered := current.RegisteredClaims
	registered.IssuedAt = nil
	registered.NotBefore = nil

	return u.mint(claimsFor(user, registered))
}

func (u *authUsecase) mint(claims auth.SessionClaims) (*Session, error) {
	token, err := u.sessions.Mint(claims)
	if err != nil {
		return nil, err
	}

	verified, err := u.sessions.Verify(token)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, Claims: verified}, nil
}

func claimsFor(user *model.User, registered jwt.RegisteredClaims) auth.SessionClaims {
	registered.Subject = user.ID.Hex()

	return auth.SessionClaims{
		Name:             user.Name,
		Email:            user.Email,
		Avatar:           user.Avatar,
		Gender:           string(user.Gender),
		RegisteredClaims: registered,
	}
}
