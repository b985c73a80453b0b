package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"
	"resumebuilder/internal/storage"
)

const maxPhotoBytes = 5 << 20

type UserHandler struct {
	users  services.UserService
	auth   services.AuthService
	photos storage.PhotoStore
	log    zerolog.Logger
}

func NewUserHandler(users services.UserService, auth services.AuthService, photos storage.PhotoStore, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, photos: photos, log: log.With().Str("handler", "users").Logger()}
}

// GetMe godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  handlers.Envelope
// @Failure      401  {object}  handlers.Envelope
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: "User is not authenticated"})
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

// UpdateMe godoc
// @Summary      Update name, email or profile photo
// @Description  Accepts JSON or multipart form data. Password fields are rejected.
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Success      200  {object}  handlers.Envelope
// @Failure      400  {object}  handlers.Envelope
// @Router       /users/updateMe [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: "User is not authenticated"})
		return
	}

	patch, err := h.collectPatch(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	_, hasPassword := patch["password"]
	_, hasConfirm := patch["passwordConfirm"]
	if hasPassword || hasConfirm {
		c.JSON(http.StatusBadRequest, Envelope{
			Status:  "fail",
			Message: "This is not the route to change password! Use /changePassword.",
		})
		return
	}

	if file, header, ferr := c.Request.FormFile("photo"); ferr == nil {
		defer file.Close()
		if h.photos == nil {
			respondError(c, apperrors.Upstream("Photo uploads are not configured"))
			return
		}
		if header.Size > maxPhotoBytes {
			c.JSON(http.StatusBadRequest, Envelope{Status: "fail", Message: "Photo exceeds the 5MB limit"})
			return
		}
		url, uerr := h.photos.UploadUserPhoto(c.Request.Context(), user.ID, header.Header.Get("Content-Type"), file, header.Size)
		if uerr != nil {
			respondError(c, uerr)
			return
		}
		patch["photo"] = url
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": updated})
}

// collectPatch reads the update fields from either a JSON body or a
// multipart/urlencoded form, so photo uploads and plain profile edits share
// one endpoint.
func (h *UserHandler) collectPatch(c *gin.Context) (map[string]any, error) {
	patch := map[string]any{}
	if c.ContentType() == "application/json" {
		if err := json.NewDecoder(c.Request.Body).Decode(&patch); err != nil {
			return nil, err
		}
		return patch, nil
	}
	if err := c.Request.ParseMultipartForm(maxPhotoBytes); err != nil && err != http.ErrNotMultipart {
		return nil, err
	}
	for _, key := range []string{"name", "email", "password", "passwordConfirm", "role", "active"} {
		if v, ok := c.GetPostForm(key); ok {
			patch[key] = v
		}
	}
	return patch, nil
}

// DeleteMe godoc
// @Summary      Deactivate the current account
// @Tags         users
// @Success      204
// @Failure      401  {object}  handlers.Envelope
// @Router       /users/deleteMe [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: "User is not authenticated"})
		return
	}
	if err := h.users.Deactivate(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// RequestReactivate godoc
// @Summary      Email a reactivation link to a deactivated account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input  body      models.ReactivateRequest  true  "Account email"
// @Success      200    {object}  handlers.Envelope
// @Router       /users/reactivateAccount [post]
func (h *UserHandler) RequestReactivate(c *gin.Context) {
	var req models.ReactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.users.RequestReactivate(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "If that email exists, a reactivation link has been sent")
}

// Reactivate godoc
// @Summary      Reactivate an account with an emailed token
// @Tags         users
// @Produce      json
// @Param        token  path      string  true  "Reactivation token"
// @Success      200    {object}  handlers.Envelope
// @Failure      404    {object}  handlers.Envelope
// @Router       /users/reactivateMe/{token} [patch]
func (h *UserHandler) Reactivate(c *gin.Context) {
	user, err := h.users.Reactivate(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	issueSession(c, h.auth, h.log, user, http.StatusOK)
}
