package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
)

// errNoDocument matches the generic handler contract: an id miss is a plain 404.
const errNoDocument = "Invalid ID: no document found with that ID"

type UserRepository interface {
	Store[models.User]

	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// credential rotation
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// single-use reset tokens; consumption is one conditional UPDATE so two
	// concurrent requests cannot both redeem the same token
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error)

	// reactivation mirrors the reset flow with its own token namespace
	SetReactivateToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearReactivateToken(ctx context.Context, id uuid.UUID) error
	ConsumeReactivateToken(ctx context.Context, tokenHash string) (*models.User, error)

	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// userListColumns whitelists the JSON field names clients may filter or sort
// by, mapped onto their columns.
var userListColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"active":    "active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const userColumns = `
	id, name, email, photo, role, active,
	password_hash, password_changed_at,
	reset_token_hash, reset_token_expires_at,
	reactivate_token_hash, reactivate_token_expires_at,
	created_at, updated_at
`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.Role, &u.Active,
		&u.PasswordHash, &u.PasswordChangedAt,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt,
		&u.ReactivateTokenHash, &u.ReactivateTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Photo == "" {
		u.Photo = models.DefaultPhotoURL
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	const q = `
		INSERT INTO users (id, name, email, photo, role, active, password_hash)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING active, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		u.ID, u.Name, u.Email, u.Photo, u.Role, u.PasswordHash,
	).Scan(&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("A user with this email already exists")
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID, scope Scope) (*models.User, error) {
	args := []any{id}
	where, err := whereClause(userListColumns, scope, nil, &args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if where != "" {
		// scope conditions start at $2
		q += " AND " + where[len(" WHERE "):]
	}
	return scanUser(r.DB.QueryRowContext(ctx, q, args...))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, q, email))
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, patch map[string]any, scope Scope) (*models.User, error) {
	current, err := r.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	updated, err := mergePatch(current, patch, "id", "createdAt", "updatedAt")
	if err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	const q = `
		UPDATE users
		SET name = $2, email = $3, photo = $4, role = $5, active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.DB.QueryRowContext(ctx, q,
		id, updated.Name, updated.Email, updated.Photo, updated.Role, updated.Active,
	).Scan(&updated.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	return updated, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID, scope Scope) error {
	args := []any{id}
	where, err := whereClause(userListColumns, scope, nil, &args)
	if err != nil {
		return err
	}
	q := `DELETE FROM users WHERE id = $1`
	if where != "" {
		q += " AND " + where[len(" WHERE "):]
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errNoDocument)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, lq ListQuery, scope Scope) ([]*models.User, error) {
	tail, args, err := listClauses(userListColumns, scope, lq, "created_at DESC")
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetPassword rotates the stored hash. password_changed_at is backdated one
// second so a token issued in the same instant still compares as fresh.
func (r *userRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = NOW() - INTERVAL '1 second',
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id, passwordHash)
}

func (r *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id, tokenHash, expiresAt)
}

func (r *userRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id)
}

// ConsumeResetToken redeems a reset token and rotates the password in a
// single conditional UPDATE: lookup and invalidation are atomic, so at most
// one concurrent request can win.
func (r *userRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error) {
	const q = `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = NOW() - INTERVAL '1 second',
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE reset_token_hash = $1 AND reset_token_expires_at > NOW()
		RETURNING ` + userColumns + `
	`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, tokenHash, newPasswordHash))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NotFound("The token is invalid or has expired")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) SetReactivateToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reactivate_token_hash = $2, reactivate_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id, tokenHash, expiresAt)
}

func (r *userRepository) ClearReactivateToken(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE users
		SET reactivate_token_hash = NULL, reactivate_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id)
}

func (r *userRepository) ConsumeReactivateToken(ctx context.Context, tokenHash string) (*models.User, error) {
	const q = `
		UPDATE users
		SET active = TRUE,
		    reactivate_token_hash = NULL,
		    reactivate_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE reactivate_token_hash = $1 AND reactivate_token_expires_at > NOW()
		RETURNING ` + userColumns + `
	`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, tokenHash))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NotFound("The token is invalid or has expired")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const q = `UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, q, id, active)
}

func (r *userRepository) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errNoDocument)
	}
	return nil
}
