package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/auth"
	"github.com/vasapolrittideah/account-api/shared/middleware"
	"github.com/vasapolrittideah/account-api/shared/validation"
)

type stubSignup struct {
	requestChallenge func(ctx context.Context, email string) (string, error)
	completeSignup   func(ctx context.Context, p usecase.CompleteSignupParams) (*model.User, error)
}

func (s *stubSignup) RequestChallenge(ctx context.Context, email string) (string, error) {
	return s.requestChallenge(ctx, email)
}

func (s *stubSignup) CompleteSignup(ctx context.Context, p usecase.CompleteSignupParams) (*model.User, error) {
	return s.completeSignup(ctx, p)
}

type stubPasswordReset struct {
	requestReset  func(ctx context.Context, name, email string) (string, error)
	completeReset func(ctx context.Context, p usecase.CompleteResetParams) error
}

func (s *stubPasswordReset) RequestReset(ctx context.Context, name, email string) (string, error) {
	return s.requestReset(ctx, name, email)
}

func (s *stubPasswordReset) CompleteReset(ctx context.Context, p usecase.CompleteResetParams) error {
	return s.completeReset(ctx, p)
}

type stubAuth struct {
	signIn        func(ctx context.Context, p usecase.SignInParams) (*usecase.Session, error)
	refreshClaims func(ctx context.Context, c *auth.SessionClaims) (*usecase.Session, error)
}

func (s *stubAuth) SignIn(ctx context.Context, p usecase.SignInParams) (*usecase.Session, error) {
	return s.signIn(ctx, p)
}

func (s *stubAuth) RefreshClaims(ctx context.Context, c *auth.SessionClaims) (*usecase.Session, error) {
	return s.refreshClaims(ctx, c)
}

type stubProfile struct {
	getProfile      func(ctx context.Context, id string) (*model.User, error)
	updateProfile   func(ctx context.Context, id string, p usecase.UpdateProfileParams) (*model.User, error)
	completeAddress func(ctx context.Context, id string, a model.Address) (*model.User, error)
	locations       func() map[string][]string
}

func (s *stubProfile) GetProfile(ctx context.Context, id string) (*model.User, error) {
	return s.getProfile(ctx, id)
}

func (s *stubProfile) UpdateProfile(ctx context.Context, id string, p usecase.UpdateProfileParams) (*model.User, error) {
	return s.updateProfile(ctx, id, p)
}

func (s *stubProfile) CompleteAddress(ctx context.Context, id string, a model.Address) (*model.User, error) {
	return s.completeAddress(ctx, id, a)
}

func (s *stubProfile) Locations() map[string][]string {
	return s.locations()
}

type stubImage struct {
	upload func(ctx context.Context, p usecase.UploadImageParams) (string, error)
	delete func(ctx context.Context, url string) (bool, error)
}

func (s *stubImage) Upload(ctx context.Context, p usecase.UploadImageParams) (string, error) {
	return s.upload(ctx, p)
}

func (s *stubImage) Delete(ctx context.Context, url string) (bool, error) {
	return s.delete(ctx, url)
}

type fixture struct {
	signup   *stubSignup
	reset    *stubPasswordReset
	auth     *stubAuth
	profile  *stubProfile
	image    *stubImage
	sessions *auth.JWTAuthenticator
	logs     *bytes.Buffer
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		signup:   &stubSignup{},
		reset:    &stubPasswordReset{},
		auth:     &stubAuth{},
		profile:  &stubProfile{},
		image:    &stubImage{},
		sessions: auth.NewJWTAuthenticator("account-api", "account-service", "secret", time.Hour),
		logs:     &bytes.Buffer{},
	}
	logger := zerolog.New(f.logs)

	h := NewAccountHandler(AccountHandlerParams{
		SignupUsecase:        f.signup,
		PasswordResetUsecase: f.reset,
		AuthUsecase:          f.auth,
		ProfileUsecase:       f.profile,
		ImageUsecase:         f.image,
		Authenticator:        middleware.NewSessionAuthenticator(f.sessions, "session_token"),
		Validator:            validation.New(),
		Cookie:               CookieConfig{Name: "session_token", Secure: true},
		MaxImageBytes:        1024,
		Logger:               &logger,
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) token(t *testing.T, subject string) string {
	t.Helper()

	token, err := f.sessions.Mint(auth.SessionClaims{
		Name:             "Alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	})
	require.NoError(t, err)
	return token
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestSignupOTP(t *testing.T) {
	f := newFixture(t)
	f.signup.requestChallenge = func(_ context.Context, email string) (string, error) {
		assert.Equal(t, "alice@x.com", email)
		return "sig.123", nil
	}

	rec := f.do(t, http.MethodPost, "/v1/auth/signup/otp", map[string]string{"email": "alice@x.com"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"OTP sent successfully","hash":"sig.123"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/auth/signup/otp", map[string]string{"email": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email must be a valid email address", decodeMap(t, rec)["message"])
}

func TestSignup_Created(t *testing.T) {
	f := newFixture(t)
	f.signup.completeSignup = func(_ context.Context, p usecase.CompleteSignupParams) (*model.User, error) {
		assert.Equal(t, "12345678", p.Code)
		assert.Equal(t, "sig.1", p.Token)
		assert.Equal(t, model.GenderFemale, p.Gender)
		return &model.User{Name: p.Name, Email: p.Email, PasswordHash: "secret-hash"}, nil
	}

	rec := f.do(t, http.MethodPost, "/v1/auth/signup", map[string]string{
		"name": "Alice", "email": "alice@x.com", "password": "password1",
		"gender": "female", "otp": "12345678", "hash": "sig.1",
	}, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User created successfully", decodeMap(t, rec)["message"])
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: &usecase.ValidationError{Message: "Password must be at least 8 characters long"}, wantStatus: http.StatusBadRequest},
		{err: usecase.ErrOTPExpired, wantStatus: http.StatusBadRequest},
		{err: usecase.ErrInvalidOTP, wantStatus: http.StatusBadRequest},
		{err: usecase.ErrOTPAlreadyUsed, wantStatus: http.StatusBadRequest},
		{err: usecase.ErrNameMismatch, wantStatus: http.StatusBadRequest},
		{err: usecase.ErrUserAlreadyExists, wantStatus: http.StatusConflict},
		{err: usecase.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{err: usecase.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{err: usecase.ErrBlobStoreDisabled, wantStatus: http.StatusServiceUnavailable},
		{err: fmt.Errorf("%w: smtp down", usecase.ErrDeliveryFailed), wantStatus: http.StatusInternalServerError},
		{err: errors.New("mongo timeout"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.reset.requestReset = func(context.Context, string, string) (string, error) {
				return "", tt.err
			}

			rec := f.do(t, http.MethodPost, "/v1/auth/password/forgot", map[string]string{"name": "Alice", "email": "alice@x.com"}, "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "something went wrong", decodeMap(t, rec)["message"])
				assert.Contains(t, f.logs.String(), "failed to request password reset")
			}
		})
	}
}

func TestValidationMessageIsReturned(t *testing.T) {
	f := newFixture(t)
	f.reset.completeReset = func(context.Context, usecase.CompleteResetParams) error {
		return &usecase.ValidationError{Message: "Password must be at most 14 characters long"}
	}

	rec := f.do(t, http.MethodPost, "/v1/auth/password/reset", map[string]string{
		"email": "a@x.com", "otp": "123456", "hash": "s.1", "newPassword": "123456789012345",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at most 14 characters long", decodeMap(t, rec)["message"])
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	f.reset.completeReset = func(_ context.Context, p usecase.CompleteResetParams) error {
		assert.Equal(t, "newpassword", p.NewPassword)
		assert.Equal(t, "654321", p.Code)
		return nil
	}

	rec := f.do(t, http.MethodPost, "/v1/auth/password/reset", map[string]string{
		"email": "a@x.com", "otp": "654321", "hash": "s.1", "newPassword": "newpassword",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password reset successfully"}`, rec.Body.String())
}

func TestSignIn_SetsCookie(t *testing.T) {
	f := newFixture(t)
	f.auth.signIn = func(_ context.Context, p usecase.SignInParams) (*usecase.Session, error) {
		if p.Password != "password1" {
			return nil, usecase.ErrInvalidCredentials
		}
		exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
		return &usecase.Session{
			Token:  "tok",
			Claims: &auth.SessionClaims{Name: "Alice", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp}},
		}, nil
	}

	rec := f.do(t, http.MethodPost, "/v1/auth/signin", map[string]string{"email": "alice@x.com", "password": "password1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Positive(t, cookies[0].MaxAge)

	rec = f.do(t, http.MethodPost, "/v1/auth/signin", map[string]string{"email": "alice@x.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignOut_ClearsCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/signout", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/auth/session"},
		{http.MethodPost, "/v1/auth/session/refresh"},
		{http.MethodGet, "/v1/profile"},
		{http.MethodPatch, "/v1/profile"},
		{http.MethodPost, "/v1/profile/address"},
		{http.MethodPost, "/v1/images"},
		{http.MethodDelete, "/v1/images"},
	} {
		rec := f.do(t, route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestGetSessionAndRefresh(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, "u1")

	rec := f.do(t, http.MethodGet, "/v1/auth/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	claims := decodeMap(t, rec)["claims"].(map[string]any)
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "Alice", claims["name"])

	f.auth.refreshClaims = func(_ context.Context, c *auth.SessionClaims) (*usecase.Session, error) {
		assert.Equal(t, "u1", c.Subject)
		return &usecase.Session{Token: "new", Claims: &auth.SessionClaims{Name: "Alicia", RegisteredClaims: c.RegisteredClaims}}, nil
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/session/refresh", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "new", body["token"])
	assert.Equal(t, "Alicia", body["claims"].(map[string]any)["name"])
}

func TestProfileRoutes(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, "u1")

	f.profile.getProfile = func(_ context.Context, id string) (*model.User, error) {
		assert.Equal(t, "u1", id)
		return &model.User{Name: "Alice", IsAddressComplete: true}, nil
	}
	f.profile.updateProfile = func(_ context.Context, _ string, p usecase.UpdateProfileParams) (*model.User, error) {
		require.NotNil(t, p.Gender)
		assert.Equal(t, model.GenderNonBinary, *p.Gender)
		assert.Nil(t, p.Name)
		return &model.User{Gender: *p.Gender}, nil
	}
	f.profile.completeAddress = func(_ context.Context, _ string, a model.Address) (*model.User, error) {
		return &model.User{Address: a, IsAddressComplete: true}, nil
	}

	rec := f.do(t, http.MethodGet, "/v1/profile", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["isAddressComplete"])

	rec = f.do(t, http.MethodPatch, "/v1/profile", map[string]string{"gender": "non-binary"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, "/v1/profile", map[string]string{"gender": "robot"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/profile/address", map[string]string{
		"state": "Maharashtra", "city": "Pune", "postalCode": "411001",
	}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	user := decodeMap(t, rec)["user"].(map[string]any)
	assert.Equal(t, "411001", user["address"].(map[string]any)["postalCode"])
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	f.image.upload = func(_ context.Context, p usecase.UploadImageParams) (string, error) {
		assert.Equal(t, "me.png", p.Filename)
		assert.Equal(t, "image/png", p.ContentType)
		assert.EqualValues(t, 3, p.Size)
		data, err := io.ReadAll(p.Body)
		require.NoError(t, err)
		assert.Equal(t, "png", string(data))
		return "https://cdn.test/avatars/x.png", nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.token(t, "u1"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://cdn.test/avatars/x.png"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+f.token(t, "u1"))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteImage(t *testing.T) {
	f := newFixture(t)
	f.image.delete = func(_ context.Context, url string) (bool, error) {
		return !strings.HasPrefix(url, "https://cdn.test/"), nil
	}
	token := f.token(t, "u1")

	rec := f.do(t, http.MethodDelete, "/v1/images", map[string]string{"url": "https://cdn.test/avatars/x.png"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Image deleted successfully"}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/v1/images", map[string]string{"url": "https://robohash.org/x"}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["ignored"])
}

func TestListLocations(t *testing.T) {
	f := newFixture(t)
	f.profile.locations = func() map[string][]string {
		return map[string][]string{"Maharashtra": {"Mumbai", "Pune"}}
	}

	rec := f.do(t, http.MethodGet, "/v1/locations", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"states":{"Maharashtra":["Mumbai","Pune"]}}`, rec.Body.String())
}
