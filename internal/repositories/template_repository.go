package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
)

type TemplateRepository interface {
	Store[models.Template]
}

var templateListColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const templateColumns = `id, name, image_preview_url, created_at, updated_at`

type templateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) TemplateRepository {
	return &templateRepository{DB: db}
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	err := row.Scan(&t.ID, &t.Name, &t.ImagePreviewURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	return t, nil
}

func (r *templateRepository) Create(ctx context.Context, t *models.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	const q = `
		INSERT INTO templates (id, name, image_preview_url)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, q, t.ID, t.Name, t.ImagePreviewURL).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *templateRepository) GetByID(ctx context.Context, id uuid.UUID, scope Scope) (*models.Template, error) {
	args := []any{id}
	where, err := whereClause(templateListColumns, scope, nil, &args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	if where != "" {
		q += " AND " + where[len(" WHERE "):]
	}
	return scanTemplate(r.DB.QueryRowContext(ctx, q, args...))
}

func (r *templateRepository) Update(ctx context.Context, id uuid.UUID, patch map[string]any, scope Scope) (*models.Template, error) {
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
		UPDATE templates
		SET name = $2, image_preview_url = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.DB.QueryRowContext(ctx, q, id, updated.Name, updated.ImagePreviewURL).
		Scan(&updated.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errNoDocument)
		}
		return nil, err
	}
	return updated, nil
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID, scope Scope) error {
	args := []any{id}
	where, err := whereClause(templateListColumns, scope, nil, &args)
	if err != nil {
		return err
	}
	q := `DELETE FROM templates WHERE id = $1`
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

func (r *templateRepository) List(ctx context.Context, lq ListQuery, scope Scope) ([]*models.Template, error) {
	tail, args, err := listClauses(templateListColumns, scope, lq, "created_at DESC")
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
