package handler

import (
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/response"
)

func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.passwordResetUsecase.RequestReset(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeError(w, err, "failed to request password reset")
		return
	}

	response.JSON(w, http.StatusOK, payload.ChallengeResponse{
		Message: "OTP sent successfully",
		Hash:    token,
	})
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.CompleteReset(r.Context(), usecase.CompleteResetParams{
		Email:       req.Email,
		Code:        req.OTP,
		Token:       req.Hash,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.writeError(w, err, "failed to reset password")
		return
	}

	response.Message(w, http.StatusOK, "Password reset successfully")
}
