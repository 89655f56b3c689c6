package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/address"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
)

// ProfileUsecase defines the business logic for reading and editing a profile.
// Edits are not pushed into live sessions; clients refresh their session claims.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)
	CompleteAddress(ctx context.Context, userID string, addr model.Address) (*model.User, error)
	// Locations lists the states and cities an address may use.
	Locations() map[string][]string
}

// UpdateProfileParams defines the optional profile fields to change.
type UpdateProfileParams struct {
	Name   *string
	Gender *model.Gender
	Avatar *string
}

type profileUsecase struct {
	userRepo  repository.UserRepository
	validator address.Validator
}

func NewProfileUsecase(userRepo repository.UserRepository, validator address.Validator) ProfileUsecase {
	return &profileUsecase{
		userRepo:  userRepo,
		validator: validator,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Accounts whose address was filled before the flag existed.
	if !user.IsAddressComplete && user.Address.IsFilled() {
		complete := true
		repaired, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{IsAddressComplete: &complete})
		if err != nil {
			return nil, mapUserErr(err)
		}
		return repaired, nil
	}

	return user, nil
}

func (u *profileUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	var update repository.UpdateUserParams

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, newValidationError("Name cannot be empty")
		}
		update.Name = &name
	}

	if params.Gender != nil {
		if !params.Gender.Valid() {
			return nil, newValidationError("Invalid gender value")
		}
		update.Gender = params.Gender
	}

	if params.Avatar != nil {
		avatar := strings.TrimSpace(*params.Avatar)
		update.Avatar = &avatar
	}

	if update == (repository.UpdateUserParams{}) {
		return nil, newValidationError("Nothing to update")
	}

	user, err := u.userRepo.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return user, nil
}

func (u *profileUsecase) CompleteAddress(ctx context.Context, userID string, addr model.Address) (*model.User, error) {
	addr = model.Address{
		State:      strings.TrimSpace(addr.State),
		City:       strings.TrimSpace(addr.City),
		PostalCode: strings.TrimSpace(addr.PostalCode),
	}
	if !addr.IsFilled() {
		return nil, newValidationError("State, city and postal code are required")
	}

	if res := u.validator.Validate(addr.State, addr.City, addr.PostalCode); !res.IsValid {
		return nil, newValidationError("%s", res.Message)
	}

	complete := true
	user, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Address:           &addr,
		IsAddressComplete: &complete,
	})
	if err != nil {
		return nil, mapUserErr(err)
	}

	return user, nil
}

func (u *profileUsecase) Locations() map[string][]string {
	return u.validator.States()
}

func (u *profileUsecase) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
