package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
)

var previewURLRe = regexp.MustCompile(`^(http|https)://[^\s$.?#].[^\s]*$`)

// Template is a read-mostly catalog entry a resume renders against.
type Template struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	ImagePreviewURL string    `json:"image_preview_url"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (t *Template) Validate() error {
	if len(t.Name) < 3 {
		return apperrors.Validation("Template name must be at least 3 characters long")
	}
	if len(t.Name) > 100 {
		return apperrors.Validation("Template name must be less than 100 characters long")
	}
	if !previewURLRe.MatchString(t.ImagePreviewURL) {
		return apperrors.Validation("Invalid URL format")
	}
	return nil
}
