package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const DefaultPhotoURL = "https://raw.githubusercontent.com/fayinana/HomeTradeNetwork-API-/main/file/image/user/default.jpg"

type User struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Photo  string    `json:"photo"`
	Role   string    `json:"role"`
	Active bool      `json:"active"`

	// never serialized
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`

	// single-use token state; only hashes are stored
	ResetTokenHash           *string    `json:"-"`
	ResetTokenExpiresAt      *time.Time `json:"-"`
	ReactivateTokenHash      *string    `json:"-"`
	ReactivateTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return apperrors.Validation("Name is required")
	}
	if !emailRe.MatchString(u.Email) {
		return apperrors.Validation("Invalid email format")
	}
	return nil
}

// ChangedPasswordAfter reports whether the stored credential was rotated
// after the given token issuance time. Sessions issued before a password
// change are stale and must be rejected.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

type SignupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type ReactivateRequest struct {
	Email string `json:"email" binding:"required,email"`
}
