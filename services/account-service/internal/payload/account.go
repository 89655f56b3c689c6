package payload

import (
	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/shared/auth"
)

type SignupOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChallengeResponse carries the token the client echoes back with the code.
type ChallengeResponse struct {
	Message string `json:"message"`
	Hash    string `json:"hash"`
}

type SignupRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Gender   string `json:"gender"   validate:"required,oneof=male female non-binary"`
	OTP      string `json:"otp"      validate:"required,numeric"`
	Hash     string `json:"hash"     validate:"required"`
}

type SignupResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token  string              `json:"token,omitempty"`
	Claims *auth.SessionClaims `json:"claims"`
}

type ForgotPasswordRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	OTP         string `json:"otp"         validate:"required,numeric"`
	Hash        string `json:"hash"        validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateProfileRequest changes only the fields present in the body.
type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Gender *string `json:"gender" validate:"omitempty,oneof=male female non-binary"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

type LocationsResponse struct {
	States map[string][]string `json:"states"`
}

type CompleteAddressRequest struct {
	State      string `json:"state"      validate:"required"`
	City       string `json:"city"       validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

type UploadImageResponse struct {
	URL string `json:"url"`
}

type DeleteImageRequest struct {
	URL string `json:"url" validate:"required"`
}

type DeleteImageResponse struct {
	Message string `json:"message"`
	Ignored bool   `json:"ignored,omitempty"`
}

type ProfileResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}
