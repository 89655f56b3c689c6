package handler

import (
	"net/http"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/middleware"
	"github.com/vasapolrittideah/account-api/shared/response"
)

func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req payload.SignInRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Malformed credentials get the same answer as wrong ones.
	session, err := h.authUsecase.SignIn(r.Context(), usecase.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err, "failed to sign in")
		return
	}

	h.setSessionCookie(w, session)
	response.JSON(w, http.StatusOK, payload.SessionResponse{Token: session.Token, Claims: session.Claims})
}

func (h *AccountHandler) SignOut(w http.ResponseWriter, _ *http.Request) {
	h.clearSessionCookie(w)
	response.Message(w, http.StatusOK, "Signed out successfully")
}

func (h *AccountHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	response.JSON(w, http.StatusOK, payload.SessionResponse{Claims: claims})
}

func (h *AccountHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := h.authUsecase.RefreshClaims(r.Context(), claims)
	if err != nil {
		h.writeError(w, err, "failed to refresh session")
		return
	}

	h.setSessionCookie(w, session)
	response.JSON(w, http.StatusOK, payload.SessionResponse{Token: session.Token, Claims: session.Claims})
}

func (h *AccountHandler) setSessionCookie(w http.ResponseWriter, session *usecase.Session) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if session.Claims != nil && session.Claims.ExpiresAt != nil {
		cookie.Expires = session.Claims.ExpiresAt.Time
		if maxAge := int(session.Claims.ExpiresAt.Sub(h.now()).Seconds()); maxAge > 0 {
			cookie.MaxAge = maxAge
		}
	}

	http.SetCookie(w, cookie)
}

func (h *AccountHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
