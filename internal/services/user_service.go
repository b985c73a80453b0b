package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/utils"
)

type UserService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Signin(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID, activeOnly bool) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.User, error)

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) (*models.User, error)

	Deactivate(ctx context.Context, id uuid.UUID) error
	RequestReactivate(ctx context.Context, email string) error
	Reactivate(ctx context.Context, rawToken string) (*models.User, error)
}

type userService struct {
	repo     repositories.UserRepository
	emails   EmailService
	auth     AuthService
	resetTTL time.Duration
	log      zerolog.Logger
}

func NewUserService(repo repositories.UserRepository, emails EmailService, auth AuthService, resetTTL time.Duration, log zerolog.Logger) UserService {
	return &userService{
		repo:     repo,
		emails:   emails,
		auth:     auth,
		resetTTL: resetTTL,
		log:      log.With().Str("service", "users").Logger(),
	}
}

func (s *userService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// best effort: a failed welcome mail never rolls back the account
	go func(email, name string) {
		if err := s.emails.SendWelcome(email, name); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("welcome email failed")
		}
	}(user.Email, user.Name)

	return user, nil
}

// Signin answers every failure the same way so responses cannot be used to
// enumerate accounts. Deactivated accounts fail here too.
func (s *userService) Signin(ctx context.Context, email, password string) (*models.User, error) {
	incorrect := apperrors.Unauthenticated("Incorrect email or password")

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, incorrect
		}
		return nil, err
	}
	if !user.Active {
		return nil, incorrect
	}
	if !s.auth.VerifyPassword(password, user.PasswordHash) {
		return nil, incorrect
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID, activeOnly bool) (*models.User, error) {
	var scope repositories.Scope
	if activeOnly {
		scope = repositories.Scope{"active": true}
	}
	return s.repo.GetByID(ctx, id, scope)
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.User, error) {
	// the profile route must never touch credentials or privileges
	for _, banned := range []string{"password", "passwordConfirm", "role", "active"} {
		delete(patch, banned)
	}
	return s.repo.Update(ctx, id, patch, nil)
}

// ForgotPassword stores only the token hash, with a short absolute expiry,
// via a direct column update so unrelated stale fields on the record cannot
// block the save. The handler answers uniformly whether or not the email
// exists.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			s.log.Info().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	raw, hashed, err := utils.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, hashed, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	if err := s.emails.SendPasswordReset(user.Email, user.Name, raw); err != nil {
		// never leave a live token nobody received
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID.String()).Msg("failed to clear undelivered reset token")
		}
		return err
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.User, error) {
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	// lookup and invalidation are one atomic conditional update
	return s.repo.ConsumeResetToken(ctx, utils.HashToken(rawToken), hash)
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if !s.auth.VerifyPassword(current, user.PasswordHash) {
		return nil, apperrors.Unauthenticated("Your current password is incorrect")
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPassword(ctx, id, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate is a soft delete: the row survives, the active flag flips off.
func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *userService) RequestReactivate(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			s.log.Info().Str("email", email).Msg("reactivation requested for unknown email")
			return nil
		}
		return err
	}

	raw, hashed, err := utils.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetReactivateToken(ctx, user.ID, hashed, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	if err := s.emails.SendReactivate(user.Email, user.Name, raw); err != nil {
		if clearErr := s.repo.ClearReactivateToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID.String()).Msg("failed to clear undelivered reactivate token")
		}
		return err
	}
	return nil
}

func (s *userService) Reactivate(ctx context.Context, rawToken string) (*models.User, error) {
	return s.repo.ConsumeReactivateToken(ctx, utils.HashToken(rawToken))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
