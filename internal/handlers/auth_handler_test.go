package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/config"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
)

// stubUserService satisfies services.UserService with canned behavior; only
// the methods a given test exercises are overridden.
type stubUserService struct {
	services.UserService

	signup         func(models.SignupRequest) (*models.User, error)
	signin         func(email, password string) (*models.User, error)
	resetPassword  func(rawToken, newPassword string) (*models.User, error)
	forgotPassword func(email string) error
}

func (s *stubUserService) Signup(_ context.Context, req models.SignupRequest) (*models.User, error) {
	return s.signup(req)
}

func (s *stubUserService) Signin(_ context.Context, email, password string) (*models.User, error) {
	return s.signin(email, password)
}

func (s *stubUserService) ResetPassword(_ context.Context, rawToken, newPassword string) (*models.User, error) {
	return s.resetPassword(rawToken, newPassword)
}

func (s *stubUserService) ForgotPassword(_ context.Context, email string) error {
	return s.forgotPassword(email)
}

func newTestAuth(t *testing.T) services.AuthService {
	t.Helper()
	return services.NewAuthService(config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		CookieTTL:  time.Hour,
		BcryptCost: 4,
	})
}

func newAuthRouter(t *testing.T, users services.UserService) *gin.Engine {
	t.Helper()
	h := NewAuthHandler(users, newTestAuth(t), zerolog.Nop())
	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/signin", h.Signin)
	r.POST("/auth/signout", h.Signout)
	r.POST("/auth/forgotPassword", h.ForgotPassword)
	r.PATCH("/auth/resetPassword/:token", h.ResetPassword)
	return r
}

func TestSignup_ReturnsTokenAndOmitsPassword(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", PasswordHash: "bcrypt-hash", Role: models.RoleUser, Active: true}
	users := &stubUserService{signup: func(req models.SignupRequest) (*models.User, error) {
		assert.Equal(t, "jane@example.com", req.Email)
		return user, nil
	}}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", gin.H{
		"name":            "Jane",
		"email":           "jane@example.com",
		"password":        "password123",
		"passwordConfirm": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, w.Body.String(), "bcrypt-hash")
	assert.NotContains(t, w.Body.String(), "password_hash")

	cookie := w.Result().Cookies()
	require.NotEmpty(t, cookie)
	assert.Equal(t, middleware.SessionCookieName, cookie[0].Name)
	assert.True(t, cookie[0].HttpOnly)
}

func TestSignup_RejectsMismatchedConfirm(t *testing.T) {
	users := &stubUserService{signup: func(models.SignupRequest) (*models.User, error) {
		t.Fatal("service must not be reached")
		return nil, nil
	}}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", gin.H{
		"name":            "Jane",
		"email":           "jane@example.com",
		"password":        "password123",
		"passwordConfirm": "different123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignin_UniformUnauthorized(t *testing.T) {
	users := &stubUserService{signin: func(_, _ string) (*models.User, error) {
		return nil, apperrors.Unauthenticated("Incorrect email or password")
	}}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPost, "/auth/signin", gin.H{"email": "jane@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Incorrect email or password", body["message"])
}

func TestSignout_ClearsCookie(t *testing.T) {
	r := newAuthRouter(t, &stubUserService{})

	w := doJSON(t, r, http.MethodPost, "/auth/signout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestForgotPassword_UniformResponse(t *testing.T) {
	users := &stubUserService{forgotPassword: func(string) error { return nil }}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPost, "/auth/forgotPassword", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "If that email exists")
}

func TestResetPassword_InvalidToken(t *testing.T) {
	users := &stubUserService{resetPassword: func(rawToken, _ string) (*models.User, error) {
		assert.Equal(t, "deadbeef", rawToken)
		return nil, apperrors.NotFound("The token is invalid or has expired")
	}}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPatch, "/auth/resetPassword/deadbeef", gin.H{
		"password":        "newpassword1",
		"passwordConfirm": "newpassword1",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or has expired")
}

func TestResetPassword_IssuesFreshSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, Active: true}
	users := &stubUserService{resetPassword: func(_, newPassword string) (*models.User, error) {
		assert.Equal(t, "newpassword1", newPassword)
		return user, nil
	}}
	r := newAuthRouter(t, users)

	w := doJSON(t, r, http.MethodPatch, "/auth/resetPassword/cafe01", gin.H{
		"password":        "newpassword1",
		"passwordConfirm": "newpassword1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeEnvelope(t, w)["token"])
}
