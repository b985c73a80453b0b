package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
)

type ResumeRepository interface {
	Store[models.Resume]
}

// Resumes can only ever be filtered/sorted by these fields; ownership scoping
// additionally pins owner_id on every query the handler issues.
var resumeListColumns = map[string]string{
	"user":      "owner_id",
	"template":  "template_id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const resumeColumns = `
	id, owner_id, template_id,
	personal_info, work_experience, education, skills,
	created_at, updated_at
`

type resumeRepository struct {
	DB *sql.DB
}

func NewResumeRepository(db *sql.DB) ResumeRepository {
	return &resumeRepository{DB: db}
}

func scanResume(row rowScanner) (*models.Resume, error) {
	r := &models.Resume{}
	var personal, work, education, skills []byte
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.TemplateID,
		&personal, &work, &education, &skills,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	if err := json.Unmarshal(personal, &r.PersonalInfo); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(work, &r.WorkExperience); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(education, &r.Education); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &r.Skills); err != nil {
		return nil, err
	}
	return r, nil
}

func resumeJSONArgs(r *models.Resume) (personal, work, education, skills []byte, err error) {
	if personal, err = json.Marshal(r.PersonalInfo); err != nil {
		return
	}
	if r.WorkExperience == nil {
		r.WorkExperience = []models.WorkExperience{}
	}
	if work, err = json.Marshal(r.WorkExperience); err != nil {
		return
	}
	if r.Education == nil {
		r.Education = []models.Education{}
	}
	if education, err = json.Marshal(r.Education); err != nil {
		return
	}
	skills, err = json.Marshal(r.Skills)
	return
}

func (repo *resumeRepository) Create(ctx context.Context, r *models.Resume) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	personal, work, education, skills, err := resumeJSONArgs(r)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO resumes (id, owner_id, template_id, personal_info, work_experience, education, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = repo.DB.QueryRowContext(ctx, q,
		r.ID, r.OwnerID, r.TemplateID, personal, work, education, skills,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (repo *resumeRepository) GetByID(ctx context.Context, id uuid.UUID, scope Scope) (*models.Resume, error) {
	args := []any{id}
	where, err := whereClause(resumeListColumns, scope, nil, &args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	if where != "" {
		q += " AND " + where[len(" WHERE "):]
	}
	return scanResume(repo.DB.QueryRowContext(ctx, q, args...))
}

func (repo *resumeRepository) Update(ctx context.Context, id uuid.UUID, patch map[string]any, scope Scope) (*models.Resume, error) {
	current, err := repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	updated, err := mergePatch(current, patch, "id", "user", "createdAt", "updatedAt")
	if err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	personal, work, education, skills, err := resumeJSONArgs(updated)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE resumes
		SET template_id = $2, personal_info = $3, work_experience = $4,
		    education = $5, skills = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := repo.DB.QueryRowContext(ctx, q,
		id, updated.TemplateID, personal, work, education, skills,
	).Scan(&updated.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	return updated, nil
}

func (repo *resumeRepository) Delete(ctx context.Context, id uuid.UUID, scope Scope) error {
	args := []any{id}
	where, err := whereClause(resumeListColumns, scope, nil, &args)
	if err != nil {
		return err
	}
	q := `DELETE FROM resumes WHERE id = $1`
	if where != "" {
		q += " AND " + where[len(" WHERE "):]
	}
	res, err := repo.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errNoDocument)
	}
	return nil
}

func (repo *resumeRepository) List(ctx context.Context, lq ListQuery, scope Scope) ([]*models.Resume, error) {
	tail, args, err := listClauses(resumeListColumns, scope, lq, "created_at DESC")
	if err != nil {
		return nil, err
	}
	rows, err := repo.DB.QueryContext(ctx, `SELECT `+resumeColumns+` FROM resumes`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []*models.Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}
