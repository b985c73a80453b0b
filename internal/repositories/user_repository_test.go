package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
)

func newUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "photo", "role", "active",
		"password_hash", "password_changed_at",
		"reset_token_hash", "reset_token_expires_at",
		"reactivate_token_hash", "reactivate_token_expires_at",
		"created_at", "updated_at",
	}).AddRow(
		u.ID, u.Name, u.Email, u.Photo, u.Role, u.Active,
		u.PasswordHash, u.PasswordChangedAt,
		u.ResetTokenHash, u.ResetTokenExpiresAt,
		u.ReactivateTokenHash, u.ReactivateTokenExpiresAt,
		u.CreatedAt, u.UpdatedAt,
	)
}

func testUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Name:         "A B",
		Email:        "a@b.com",
		Photo:        models.DefaultPhotoURL,
		Role:         "user",
		Active:       true,
		PasswordHash: "$2a$04$fakehash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestUserCreate_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Name: "A B", Email: "a@b.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestUserGetByID_ScopedToActive(t *testing.T) {
	repo, mock := newUserRepo(t)
	u := testUser()

	mock.ExpectQuery(`SELECT(.|\n)+FROM users WHERE id = \$1 AND active = \$2`).
		WithArgs(u.ID, true).
		WillReturnRows(userRows(u))

	got, err := repo.GetByID(context.Background(), u.ID, Scope{"active": true})
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestUserGetByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

// The reset token must be redeemed by one conditional UPDATE: the hash match,
// the expiry check, the clearing of the token fields, and the password
// rotation all happen in a single statement.
func TestConsumeResetToken_SingleAtomicUpdate(t *testing.T) {
	repo, mock := newUserRepo(t)
	u := testUser()

	mock.ExpectQuery(`UPDATE users(.|\n)+WHERE reset_token_hash = \$1 AND reset_token_expires_at > NOW\(\)(.|\n)+RETURNING`).
		WithArgs("tokenhash", "newhash").
		WillReturnRows(userRows(u))

	got, err := repo.ConsumeResetToken(context.Background(), "tokenhash", "newhash")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_ExpiredOrUnknown(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("UPDATE users").WillReturnError(sql.ErrNoRows)

	_, err := repo.ConsumeResetToken(context.Background(), "stale", "newhash")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "invalid or has expired")
}

func TestConsumeReactivateToken_ReactivatesAtomically(t *testing.T) {
	repo, mock := newUserRepo(t)
	u := testUser()

	mock.ExpectQuery(`UPDATE users(.|\n)+SET active = TRUE(.|\n)+WHERE reactivate_token_hash = \$1 AND reactivate_token_expires_at > NOW\(\)`).
		WithArgs("tokenhash").
		WillReturnRows(userRows(u))

	got, err := repo.ConsumeReactivateToken(context.Background(), "tokenhash")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSetPassword_MissingUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPassword(context.Background(), uuid.New(), "h")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestClearResetToken(t *testing.T) {
	repo, mock := newUserRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users(.|\n)+SET reset_token_hash = NULL`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearResetToken(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList_AppliesScopeFilterSortPagination(t *testing.T) {
	repo, mock := newUserRepo(t)
	u := testUser()

	mock.ExpectQuery(`SELECT(.|\n)+FROM users WHERE role = \$1 ORDER BY name ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("user", 2, 2).
		WillReturnRows(userRows(u))

	got, err := repo.List(context.Background(), ListQuery{
		Filter: map[string]string{"role": "user"},
		Sort:   []SortKey{{Field: "name"}},
		Page:   2,
		Limit:  2,
	}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, u.Email, got[0].Email)
}
