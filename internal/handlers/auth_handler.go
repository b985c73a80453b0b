package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
)

type AuthHandler struct {
	users services.UserService
	auth  services.AuthService
	log   zerolog.Logger
}

func NewAuthHandler(users services.UserService, auth services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, log: log.With().Str("handler", "auth").Logger()}
}

func (h *AuthHandler) sendToken(c *gin.Context, user *models.User, code int) {
	issueSession(c, h.auth, h.log, user, code)
}

// @Summary      Sign up
// @Description  Creates an account and returns a session token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "New account"
// @Success      201     {object}  handlers.Envelope
// @Failure      400     {object}  handlers.Envelope
// @Failure      409     {object}  handlers.Envelope
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.users.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info().Str("user_id", user.ID.String()).Msg("account created")
	h.sendToken(c, user, http.StatusCreated)
}

// @Summary      Sign in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signin  body      models.SigninRequest  true  "Credentials"
// @Success      200     {object}  handlers.Envelope
// @Failure      401     {object}  handlers.Envelope
// @Router       /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req models.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.users.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sendToken(c, user, http.StatusOK)
}

// Signout clears the session cookie. The token itself stays valid until it
// expires; there is no server-side revocation.
func (h *AuthHandler) Signout(c *gin.Context) {
	clearSessionCookie(c)
	respondMessage(c, http.StatusOK, "Logged out successfully")
}

// @Summary      Request a password reset link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        email  body      models.ForgotPasswordRequest  true  "Account email"
// @Success      200    {object}  handlers.Envelope
// @Router       /auth/forgotPassword [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	// same answer whether or not the account exists
	respondMessage(c, http.StatusOK, "If that email exists, a reset link has been sent")
}

// @Summary      Reset password with an emailed token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                       true  "Reset token"
// @Param        body   body      models.ResetPasswordRequest  true  "New password"
// @Success      200    {object}  handlers.Envelope
// @Failure      404    {object}  handlers.Envelope
// @Router       /auth/resetPassword/{token} [patch]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.users.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info().Str("user_id", user.ID.String()).Msg("password reset")
	h.sendToken(c, user, http.StatusOK)
}

// ChangePassword rotates the credential of the authenticated user after
// re-verifying the current password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: "User is not authenticated"})
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := h.users.ChangePassword(c.Request.Context(), user.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sendToken(c, updated, http.StatusOK)
}
