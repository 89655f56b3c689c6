package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/middleware"
	"github.com/vasapolrittideah/account-api/shared/response"
	"github.com/vasapolrittideah/account-api/shared/validation"
)

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AccountHandler struct {
	signupUsecase        usecase.SignupUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	authUsecase          usecase.AuthUsecase
	profileUsecase       usecase.ProfileUsecase
	imageUsecase         usecase.ImageUsecase

	authn         *middleware.SessionAuthenticator
	validator     *validation.Validator
	cookie        CookieConfig
	maxImageBytes int64
	logger        *zerolog.Logger
	now           func() time.Time
}

// AccountHandlerParams groups the dependencies of AccountHandler.
type AccountHandlerParams struct {
	SignupUsecase        usecase.SignupUsecase
	PasswordResetUsecase usecase.PasswordResetUsecase
	AuthUsecase          usecase.AuthUsecase
	ProfileUsecase       usecase.ProfileUsecase
	ImageUsecase         usecase.ImageUsecase
	Authenticator        *middleware.SessionAuthenticator
	Validator            *validation.Validator
	Cookie               CookieConfig
	MaxImageBytes        int64
	Logger               *zerolog.Logger
}

func NewAccountHandler(p AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		signupUsecase:        p.SignupUsecase,
		passwordResetUsecase: p.PasswordResetUsecase,
		authUsecase:          p.AuthUsecase,
		profileUsecase:       p.ProfileUsecase,
		imageUsecase:         p.ImageUsecase,
		authn:                p.Authenticator,
		validator:            p.Validator,
		cookie:               p.Cookie,
		maxImageBytes:        p.MaxImageBytes,
		logger:               p.Logger,
		now:                  time.Now,
	}
}

// RegisterRoutes mounts the account API on r.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Post("/auth/signup/otp", h.RequestSignupOTP)
			pub.Post("/auth/signup", h.Signup)
			pub.Post("/auth/signin", h.SignIn)
			pub.Post("/auth/signout", h.SignOut)
			pub.Post("/auth/password/forgot", h.RequestPasswordReset)
			pub.Post("/auth/password/reset", h.ResetPassword)
			pub.Get("/locations", h.ListLocations)
		})

		api.Group(func(g chi.Router) {
			g.Use(h.authn.Require)

			g.Get("/auth/session", h.GetSession)
			g.Post("/auth/session/refresh", h.RefreshSession)

			g.Get("/profile", h.GetProfile)
			g.Patch("/profile", h.UpdateProfile)
			g.Post("/profile/address", h.CompleteAddress)

			g.Post("/images", h.UploadImage)
			g.Delete("/images", h.DeleteImage)
		})
	})
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports false on failure.
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(r, dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
