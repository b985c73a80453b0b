package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/pdf"
	"resumebuilder/internal/repositories"
)

// ResumeHandler wraps the generic resource with ownership: every query is
// scoped to the signed-in user, so one user can never read or write
// another's resumes.
type ResumeHandler struct {
	*Resource[models.Resume]
	renderer pdf.Generator
	log      zerolog.Logger
}

func NewResumeHandler(repo repositories.ResumeRepository, renderer pdf.Generator, log zerolog.Logger) *ResumeHandler {
	res := NewResource[models.Resume](repo)
	res.Scope = ownerScope
	res.OnCreate = stampOwner
	return &ResumeHandler{
		Resource: res,
		renderer: renderer,
		log:      log.With().Str("handler", "resumes").Logger(),
	}
}

func ownerScope(c *gin.Context) repositories.Scope {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		// unreachable behind the auth gate; scope to nothing just in case
		return repositories.Scope{"owner_id": nil}
	}
	return repositories.Scope{"owner_id": user.ID}
}

func stampOwner(c *gin.Context, doc *models.Resume) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fmt.Errorf("no authenticated user on resume create")
	}
	doc.OwnerID = user.ID
	return nil
}

// GetMine godoc
// @Summary      List the current user's resumes
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  handlers.Envelope
// @Router       /resumes/getMyResume [get]
func (h *ResumeHandler) GetMine(c *gin.Context) {
	h.GetAll(c)
}

// Export godoc
// @Summary      Download a resume as PDF
// @Tags         resumes
// @Produce      application/pdf
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  handlers.Envelope
// @Router       /resumes/{id}/export [get]
func (h *ResumeHandler) Export(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	resume, err := h.store.GetByID(c.Request.Context(), id, h.scope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.renderer.RenderResume(resume)
	if err != nil {
		h.log.Error().Err(err).Str("resume_id", id.String()).Msg("resume render failed")
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=resume-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", out)
}
