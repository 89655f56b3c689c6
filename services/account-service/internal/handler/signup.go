package handler

import (
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/response"
)

func (h *AccountHandler) RequestSignupOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.signupUsecase.RequestChallenge(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err, "failed to request signup otp")
		return
	}

	response.JSON(w, http.StatusOK, payload.ChallengeResponse{
		Message: "OTP sent successfully",
		Hash:    token,
	})
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.signupUsecase.CompleteSignup(r.Context(), usecase.CompleteSignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Gender:   model.Gender(req.Gender),
		Code:     req.OTP,
		Token:    req.Hash,
	})
	if err != nil {
		h.writeError(w, err, "failed to complete signup")
		return
	}

	response.JSON(w, http.StatusCreated, payload.SignupResponse{
		Message: "User created successfully",
		User:    user,
	})
}
