package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
	"github.com/vantagecrm/vantage/pkg/composables"
)

const (
	sessionSelectColumns = `id, file_name, created_by, phase, columns, removed_columns, raw_rows,
		suggestions, bundle, normalization, analysis, decisions, summary, failure_reason,
		created_at, updated_at`

	selectSessionsQuery = `SELECT ` + sessionSelectColumns + ` FROM import_sessions`
	countSessionsQuery  = `SELECT COUNT(*) FROM import_sessions`
	insertSessionQuery  = `
		INSERT INTO import_sessions (
			id, file_name, created_by, phase, columns, removed_columns, raw_rows,
			suggestions, bundle, normalization, analysis, decisions, summary, failure_reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	updateSessionQuery = `
		UPDATE import_sessions
		SET phase = $2, bundle = $3, normalization = $4, analysis = $5, decisions = $6,
		    summary = $7, failure_reason = $8, updated_at = $9
		WHERE id = $1`
	deleteSessionQuery = `DELETE FROM import_sessions WHERE id = $1`

	// only a ready session may be claimed; the WHERE clause is what makes
	// two concurrent execute requests resolve to a single winner
	claimSessionQuery = `
		UPDATE import_sessions
		SET phase = $2, decisions = $3, updated_at = now()
		WHERE id = $1 AND phase = $4
		RETURNING ` + sessionSelectColumns

	deleteExpiredSessionsQuery = `DELETE FROM import_sessions WHERE updated_at < $1`
)

type SessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &SessionRepository{}
}

func (r *SessionRepository) GetPaginated(ctx context.Context, params *session.FindParams) ([]*session.Session, error) {
	if params == nil {
		params = &session.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if params.CreatedBy != "" {
		args = append(args, params.CreatedBy)
		where = append(where, `created_by = $`+strconv.Itoa(len(args)))
	}
	if params.Phase != "" {
		args = append(args, string(params.Phase))
		where = append(where, `phase = $`+strconv.Itoa(len(args)))
	}

	query := selectSessionsQuery
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC OFFSET $` + strconv.Itoa(len(args)+1) + ` LIMIT $` + strconv.Itoa(len(args)+2)

	rows, err := tx.Query(ctx, query, append(args, offset, limit)...)
	if err != nil {
		return nil, gerrors.Wrap(err, "query import sessions")
	}
	defer rows.Close()

	out := make([]*session.Session, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(tx.QueryRow(ctx, selectSessionsQuery+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, countSessionsQuery).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m, err := toDBSession(s)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertSessionQuery,
		s.ID(), m.FileName, m.CreatedBy, m.Phase, m.Columns, m.RemovedColumns, m.RawRows,
		m.Suggestions, m.Bundle, m.Normalization, m.Analysis, m.Decisions, m.Summary,
		m.FailureReason, m.CreatedAt.Time, m.UpdatedAt.Time,
	); err != nil {
		return gerrors.Wrap(err, "create import session")
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m, err := toDBSession(s)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateSessionQuery,
		s.ID(), m.Phase, m.Bundle, m.Normalization, m.Analysis, m.Decisions,
		m.Summary, m.FailureReason, m.UpdatedAt.Time,
	)
	if err != nil {
		return gerrors.Wrap(err, "update import session")
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteSessionQuery, id)
	if err != nil {
		return gerrors.Wrap(err, "delete import session")
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) ClaimExecuting(ctx context.Context, id uuid.UUID, decisions map[int]session.Decision) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	decisionsJSON, err := marshalDecisions(decisions)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(tx.QueryRow(ctx, claimSessionQuery,
		id, string(session.PhaseExecuting), decisionsJSON, string(session.PhaseReady),
	))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, gerrors.Wrap(err, "claim import session")
	}

	// claim missed: report why
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Phase() == session.PhaseExecuting {
		return nil, session.ErrExecuteInProgress
	}
	return nil, &session.PhaseError{ID: id, Phase: current.Phase(), Action: "execute"}
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, deleteExpiredSessionsQuery, cutoff)
	if err != nil {
		return 0, gerrors.Wrap(err, "delete expired import sessions")
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var m models.ImportSession
	if err := row.Scan(
		&m.ID, &m.FileName, &m.CreatedBy, &m.Phase, &m.Columns, &m.RemovedColumns, &m.RawRows,
		&m.Suggestions, &m.Bundle, &m.Normalization, &m.Analysis, &m.Decisions, &m.Summary,
		&m.FailureReason, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainSession(m)
}

func toDBSession(s *session.Session) (models.ImportSession, error) {
	var m models.ImportSession
	var err error
	if m.Columns, err = json.Marshal(s.Columns()); err != nil {
		return m, err
	}
	if m.RemovedColumns, err = json.Marshal(s.RemovedColumns()); err != nil {
		return m, err
	}
	if m.RawRows, err = json.Marshal(s.RawRows()); err != nil {
		return m, err
	}
	if m.Suggestions, err = json.Marshal(s.Suggestions()); err != nil {
		return m, err
	}
	if m.Bundle, err = marshalNullable(s.Bundle()); err != nil {
		return m, err
	}
	if m.Normalization, err = marshalNullable(s.Normalization()); err != nil {
		return m, err
	}
	if m.Analysis, err = marshalNullable(s.Analysis()); err != nil {
		return m, err
	}
	if m.Decisions, err = marshalDecisions(s.Decisions()); err != nil {
		return m, err
	}
	if m.Summary, err = marshalNullable(s.Summary()); err != nil {
		return m, err
	}
	m.FileName = s.FileName()
	m.CreatedBy = s.CreatedBy()
	m.Phase = string(s.Phase())
	m.FailureReason = s.FailureReason()
	m.CreatedAt.Time = s.CreatedAt()
	m.UpdatedAt.Time = s.UpdatedAt()
	return m, nil
}

func toDomainSession(m models.ImportSession) (*session.Session, error) {
	id := uuid.Nil
	if m.ID.Valid {
		id = m.ID.Bytes
	}

	var columns []mapping.DetectedColumn
	if err := json.Unmarshal(m.Columns, &columns); err != nil {
		return nil, gerrors.Wrap(err, "decode session columns")
	}
	var removed []string
	if err := json.Unmarshal(m.RemovedColumns, &removed); err != nil {
		return nil, gerrors.Wrap(err, "decode session removed columns")
	}
	var rawRows []normalize.RawRow
	if err := json.Unmarshal(m.RawRows, &rawRows); err != nil {
		return nil, gerrors.Wrap(err, "decode session raw rows")
	}
	var suggestions map[string]mapping.CanonicalField
	if err := json.Unmarshal(m.Suggestions, &suggestions); err != nil {
		return nil, gerrors.Wrap(err, "decode session suggestions")
	}

	var bundle *mapping.Bundle
	if err := unmarshalNullable(m.Bundle, &bundle); err != nil {
		return nil, gerrors.Wrap(err, "decode session bundle")
	}
	var result *normalize.Result
	if err := unmarshalNullable(m.Normalization, &result); err != nil {
		return nil, gerrors.Wrap(err, "decode session normalization")
	}
	var analysis *dedupe.Analysis
	if err := unmarshalNullable(m.Analysis, &analysis); err != nil {
		return nil, gerrors.Wrap(err, "decode session analysis")
	}
	var decisions map[int]session.Decision
	if err := unmarshalNullable(m.Decisions, &decisions); err != nil {
		return nil, gerrors.Wrap(err, "decode session decisions")
	}
	var summary *session.ExecutionSummary
	if err := unmarshalNullable(m.Summary, &summary); err != nil {
		return nil, gerrors.Wrap(err, "decode session summary")
	}

	return session.Hydrate(
		id,
		m.FileName,
		m.CreatedBy,
		session.Phase(m.Phase),
		columns,
		removed,
		rawRows,
		suggestions,
		bundle,
		result,
		analysis,
		decisions,
		summary,
		m.FailureReason,
		m.CreatedAt.Time,
		m.UpdatedAt.Time,
	), nil
}

// marshalNullable maps a nil pointer to SQL NULL instead of the JSON
// literal "null".
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func marshalDecisions(decisions map[int]session.Decision) ([]byte, error) {
	if decisions == nil {
		return nil, nil
	}
	return json.Marshal(decisions)
}

func unmarshalNullable(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
