package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
)

const (
	leadSelectColumns = `id, full_name, email, phone, company, notes, source, status, estimated_value::text, created_at, updated_at`

	selectLeadsQuery       = `SELECT ` + leadSelectColumns + ` FROM leads`
	countLeadsQuery        = `SELECT COUNT(*) FROM leads`
	insertLeadQuery        = `
		INSERT INTO leads (full_name, email, phone, company, notes, source, status, estimated_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric)
		RETURNING ` + leadSelectColumns
	updateLeadQuery = `
		UPDATE leads
		SET full_name = $2, email = $3, phone = $4, company = $5, notes = $6,
		    source = $7, status = $8, estimated_value = $9::numeric, updated_at = now()
		WHERE id = $1
		RETURNING ` + leadSelectColumns
	deleteLeadQuery = `DELETE FROM leads WHERE id = $1`
)

type LeadRepository struct{}

func NewLeadRepository() lead.Repository {
	return &LeadRepository{}
}

func (r *LeadRepository) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, int64, error) {
	if params == nil {
		params = &lead.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if q := strings.TrimSpace(params.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, `(LOWER(full_name) LIKE $1 OR LOWER(email) LIKE $1 OR LOWER(company) LIKE $1)`)
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, `status = $`+strconv.Itoa(len(args)))
	}
	if params.Source != "" {
		args = append(args, string(params.Source))
		where = append(where, `source = $`+strconv.Itoa(len(args)))
	}

	query := selectLeadsQuery
	countQuery := countLeadsQuery
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
		countQuery += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC OFFSET $` + strconv.Itoa(len(args)+1) + ` LIMIT $` + strconv.Itoa(len(args)+2)

	rows, err := tx.Query(ctx, query, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, gerrors.Wrap(err, "query leads")
	}
	defer rows.Close()

	out := make([]lead.Lead, 0, limit)
	for rows.Next() {
		row, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, gerrors.Wrap(err, "count leads")
	}
	return out, total, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	return r.getOne(ctx, selectLeadsQuery+` WHERE id = $1`, id)
}

func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (lead.Lead, error) {
	return r.getOne(ctx, selectLeadsQuery+` WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *LeadRepository) GetByPhone(ctx context.Context, phone string) (lead.Lead, error) {
	return r.getOne(ctx, selectLeadsQuery+` WHERE phone = $1 AND phone <> ''`, strings.TrimSpace(phone))
}

func (r *LeadRepository) GetAll(ctx context.Context) ([]lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectLeadsQuery+` ORDER BY created_at`)
	if err != nil {
		return nil, gerrors.Wrap(err, "query all leads")
	}
	defer rows.Close()

	var out []lead.Lead
	for rows.Next() {
		row, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, countLeadsQuery).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *LeadRepository) Create(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lead.Lead{}, err
	}
	row := tx.QueryRow(ctx, insertLeadQuery,
		l.FullName(), l.Email(), l.Phone(), l.Company(), l.Notes(),
		string(l.Source()), string(l.Status()), l.EstimatedValue().String(),
	)
	created, err := scanLead(row)
	if err != nil {
		return lead.Lead{}, gerrors.Wrap(err, "create lead")
	}
	return created, nil
}

func (r *LeadRepository) Update(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lead.Lead{}, err
	}
	row := tx.QueryRow(ctx, updateLeadQuery,
		l.ID(), l.FullName(), l.Email(), l.Phone(), l.Company(), l.Notes(),
		string(l.Source()), string(l.Status()), l.EstimatedValue().String(),
	)
	updated, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lead.Lead{}, lead.ErrNotFound
		}
		return lead.Lead{}, gerrors.Wrap(err, "update lead")
	}
	return updated, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteLeadQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "delete lead")
	}
	if tag.RowsAffected() == 0 {
		return lead.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) getOne(ctx context.Context, query string, arg any) (lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lead.Lead{}, err
	}
	row, err := scanLead(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lead.Lead{}, lead.ErrNotFound
		}
		return lead.Lead{}, err
	}
	return row, nil
}

func scanLead(row pgx.Row) (lead.Lead, error) {
	var m models.Lead
	if err := row.Scan(
		&m.ID, &m.FullName, &m.Email, &m.Phone, &m.Company, &m.Notes,
		&m.Source, &m.Status, &m.EstimatedValue, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return lead.Lead{}, err
	}
	return toDomainLead(m), nil
}

func toDomainLead(m models.Lead) lead.Lead {
	id := uuid.Nil
	if m.ID.Valid {
		id = m.ID.Bytes
	}
	value := decimal.Zero
	if m.EstimatedValue != "" {
		if parsed, err := decimal.NewFromString(m.EstimatedValue); err == nil {
			value = parsed
		}
	}
	return lead.Hydrate(
		id,
		m.FullName,
		m.Email,
		textOrEmpty(m.Phone),
		textOrEmpty(m.Company),
		textOrEmpty(m.Notes),
		lead.Source(m.Source),
		lead.Status(m.Status),
		value,
		m.CreatedAt.Time,
		m.UpdatedAt.Time,
	)
}

func textOrEmpty(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}
