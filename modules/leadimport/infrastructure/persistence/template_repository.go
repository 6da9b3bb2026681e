package persistence

import (
	"context"
	"encoding/json"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/importtemplate"
	"github.com/vantagecrm/vantage/modules/leadimport/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/pkg/composables"
)

const (
	templateSelectColumns = `id, name, description, created_by, bundle, is_default, created_at, updated_at`

	selectTemplatesQuery = `SELECT ` + templateSelectColumns + ` FROM import_templates`
	insertTemplateQuery  = `
		INSERT INTO import_templates (id, name, description, created_by, bundle, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	updateTemplateQuery = `
		UPDATE import_templates
		SET name = $2, description = $3, bundle = $4, is_default = $5, updated_at = $6
		WHERE id = $1`
	clearDefaultTemplateQuery = `
		UPDATE import_templates SET is_default = FALSE WHERE is_default AND id <> $1`
	deleteTemplateQuery = `DELETE FROM import_templates WHERE id = $1`
)

type TemplateRepository struct{}

func NewTemplateRepository() importtemplate.Repository {
	return &TemplateRepository{}
}

func (r *TemplateRepository) GetAll(ctx context.Context) ([]*importtemplate.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectTemplatesQuery+` ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, gerrors.Wrap(err, "query import templates")
	}
	defer rows.Close()

	var out []*importtemplate.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*importtemplate.Template, error) {
	return r.getOne(ctx, selectTemplatesQuery+` WHERE id = $1`, id)
}

func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*importtemplate.Template, error) {
	return r.getOne(ctx, selectTemplatesQuery+` WHERE LOWER(name) = LOWER($1)`, name)
}

func (r *TemplateRepository) Create(ctx context.Context, t *importtemplate.Template) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	bundle, err := json.Marshal(t.Bundle())
	if err != nil {
		return err
	}
	if t.IsDefault() {
		if _, err := tx.Exec(ctx, clearDefaultTemplateQuery, t.ID()); err != nil {
			return gerrors.Wrap(err, "clear default import template")
		}
	}
	if _, err := tx.Exec(ctx, insertTemplateQuery,
		t.ID(), t.Name(), t.Description(), t.CreatedBy(), bundle, t.IsDefault(), t.CreatedAt(), t.UpdatedAt(),
	); err != nil {
		if isUniqueViolation(err) {
			return importtemplate.ErrNameTaken
		}
		return gerrors.Wrap(err, "create import template")
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *importtemplate.Template) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	bundle, err := json.Marshal(t.Bundle())
	if err != nil {
		return err
	}
	if t.IsDefault() {
		if _, err := tx.Exec(ctx, clearDefaultTemplateQuery, t.ID()); err != nil {
			return gerrors.Wrap(err, "clear default import template")
		}
	}
	tag, err := tx.Exec(ctx, updateTemplateQuery,
		t.ID(), t.Name(), t.Description(), bundle, t.IsDefault(), t.UpdatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return importtemplate.ErrNameTaken
		}
		return gerrors.Wrap(err, "update import template")
	}
	if tag.RowsAffected() == 0 {
		return importtemplate.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteTemplateQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "delete import template")
	}
	if tag.RowsAffected() == 0 {
		return importtemplate.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) getOne(ctx context.Context, query string, arg any) (*importtemplate.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanTemplate(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, importtemplate.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func scanTemplate(row pgx.Row) (*importtemplate.Template, error) {
	var m models.ImportTemplate
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedBy, &m.Bundle, &m.IsDefault, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	id := uuid.Nil
	if m.ID.Valid {
		id = m.ID.Bytes
	}
	var bundle mapping.Bundle
	if err := json.Unmarshal(m.Bundle, &bundle); err != nil {
		return nil, gerrors.Wrap(err, "decode template bundle")
	}
	return importtemplate.Hydrate(id, m.Name, m.Description, m.CreatedBy, bundle, m.IsDefault, m.CreatedAt.Time, m.UpdatedAt.Time), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
