package handler

import (
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/middleware"
	"github.com/vasapolrittideah/account-api/shared/response"
)

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subject(w, r)
	if !ok {
		return
	}

	user, err := h.profileUsecase.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req payload.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	params := usecase.UpdateProfileParams{Name: req.Name, Avatar: req.Avatar}
	if req.Gender != nil {
		gender := model.Gender(*req.Gender)
		params.Gender = &gender
	}

	user, err := h.profileUsecase.UpdateProfile(r.Context(), userID, params)
	if err != nil {
		h.writeError(w, err, "failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, payload.ProfileResponse{Message: "Profile updated successfully", User: user})
}

func (h *AccountHandler) CompleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req payload.CompleteAddressRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.profileUsecase.CompleteAddress(r.Context(), userID, model.Address{
		State:      req.State,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		h.writeError(w, err, "failed to complete address")
		return
	}

	response.JSON(w, http.StatusOK, payload.ProfileResponse{Message: "Profile updated successfully", User: user})
}

func (h *AccountHandler) ListLocations(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, payload.LocationsResponse{States: h.profileUsecase.Locations()})
}

func (h *AccountHandler) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok || claims.Subject == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}

	return claims.Subject, true
}
