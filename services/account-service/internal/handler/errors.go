package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/response"
)

// writeError maps usecase errors to HTTP responses. Unclassified errors are
// logged and answered with a generic message.
func (h *AccountHandler) writeError(w http.ResponseWriter, err error, msg string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.Error(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, usecase.ErrOTPExpired):
		response.Error(w, http.StatusBadRequest, "OTP has expired. Please request a new one.")
	case errors.Is(err, usecase.ErrInvalidOTP):
		response.Error(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, usecase.ErrOTPAlreadyUsed):
		response.Error(w, http.StatusBadRequest, "OTP has already been used")
	case errors.Is(err, usecase.ErrNameMismatch):
		response.Error(w, http.StatusBadRequest, "Name does not match our records for this email")
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		response.Error(w, http.StatusConflict, "User already exists with this email")
	case errors.Is(err, usecase.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, usecase.ErrBlobStoreDisabled):
		response.Error(w, http.StatusServiceUnavailable, "Image storage is not configured")
	default:
		h.logger.Error().Err(err).Msg(msg)
		response.Error(w, http.StatusInternalServerError, "something went wrong")
	}
}
