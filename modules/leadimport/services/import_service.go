package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/execute"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
	"github.com/vantagecrm/vantage/modules/leadimport/parse"
	"github.com/vantagecrm/vantage/modules/leadimport/permissions"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/rbac"
)

// ErrForbidden is returned when the requesting user lacks the permission an
// operation requires.
var ErrForbidden = errors.New("operation not permitted")

// ImportService drives the import wizard: it owns session lifecycle and
// delegates the per-phase work to the parse, mapping, normalize, dedupe and
// execute packages.
type ImportService struct {
	sessions  session.Repository
	leads     lead.Repository
	engine    *execute.Engine
	rbac      *rbac.Schema
	publisher eventbus.EventBus
}

func NewImportService(
	sessions session.Repository,
	leads lead.Repository,
	schema *rbac.Schema,
	publisher eventbus.EventBus,
) *ImportService {
	return &ImportService{
		sessions:  sessions,
		leads:     leads,
		engine:    execute.NewEngine(leads, publisher),
		rbac:      schema,
		publisher: publisher,
	}
}

// Upload parses the file, suggests a column mapping and opens a session in
// the mapping phase.
func (s *ImportService) Upload(ctx context.Context, fileName string, data []byte) (*session.Session, error) {
	if err := s.require(ctx, permissions.ImportUpload); err != nil {
		return nil, err
	}

	parsed, err := parse.File(fileName, data, configuration.Use().MaxUploadSize)
	if err != nil {
		return nil, err
	}

	createdBy := ""
	if u, err := composables.UseUser(ctx); err == nil {
		createdBy = u.Email
	}

	sess := session.New(
		parsed.FileName,
		createdBy,
		parsed.Columns,
		parsed.RemovedColumns,
		parsed.Rows,
		mapping.Suggest(parsed.Columns),
	)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.publisher.Publish(session.CreatedEvent{Result: *sess})
	return sess, nil
}

// SubmitMapping validates and stores the mapping, then runs normalization
// and duplicate analysis synchronously so the session lands in ready. A
// fault while analyzing marks the session failed rather than leaving it
// stuck in normalizing.
func (s *ImportService) SubmitMapping(ctx context.Context, id uuid.UUID, bundle mapping.Bundle) (*session.Session, error) {
	if err := s.require(ctx, permissions.ImportUpload); err != nil {
		return nil, err
	}

	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SubmitMapping(bundle); err != nil {
		return nil, err
	}

	result := normalize.Run(sess.RawRows(), bundle)

	existing, err := s.leads.GetAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, sess, errors.Wrap(err, "load existing leads"))
	}
	analysis := dedupe.NewResolver(existing).Classify(result.ValidOnly())

	if err := sess.CompleteNormalization(result, analysis); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Execute claims the session and commits the import. The claim is a
// compare-and-swap on the ready phase, so of two concurrent calls exactly
// one proceeds and the other gets ErrExecuteInProgress.
func (s *ImportService) Execute(ctx context.Context, id uuid.UUID, decisions map[int]session.Decision) (*session.Session, error) {
	if err := s.require(ctx, permissions.ImportExecute); err != nil {
		return nil, err
	}
	for row, d := range decisions {
		if !session.IsValidDecision(d) {
			return nil, &session.InvalidDecisionError{Row: row, Decision: d}
		}
	}

	sess, err := s.sessions.ClaimExecuting(ctx, id, decisions)
	if err != nil {
		return nil, err
	}
	if sess.Normalization() == nil || sess.Analysis() == nil {
		return nil, s.fail(ctx, sess, errors.New("session has no analysis artifacts"))
	}

	summary := s.engine.Run(ctx, sess.Normalization().ValidOnly(), *sess.Analysis(), decisions)

	if err := sess.CompleteExecution(summary); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// session deleted mid-run; the leads are committed, only the
			// summary is gone
			return sess, nil
		}
		// the stored row still says executing; move it to failed so the
		// session is not stuck there after the error is reported
		if stored, getErr := s.sessions.GetByID(ctx, id); getErr == nil {
			_ = s.fail(ctx, stored, err)
		}
		return nil, err
	}
	s.publisher.Publish(session.ExecutedEvent{Result: *sess})
	return sess, nil
}

// GetByID returns the session with all phase artifacts.
func (s *ImportService) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	if err := s.require(ctx, permissions.ImportRead); err != nil {
		return nil, err
	}
	return s.sessions.GetByID(ctx, id)
}

func (s *ImportService) GetPaginated(ctx context.Context, params *session.FindParams) ([]*session.Session, error) {
	if err := s.require(ctx, permissions.ImportRead); err != nil {
		return nil, err
	}
	return s.sessions.GetPaginated(ctx, params)
}

func (s *ImportService) Count(ctx context.Context) (int64, error) {
	return s.sessions.Count(ctx)
}

func (s *ImportService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.require(ctx, permissions.ImportDelete); err != nil {
		return err
	}
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(session.DeletedEvent{Result: *sess})
	return nil
}

// PurgeExpired removes sessions idle longer than the configured TTL.
func (s *ImportService) PurgeExpired(ctx context.Context) (int64, error) {
	ttl := configuration.Use().SessionTTL
	if ttl <= 0 {
		return 0, nil
	}
	return s.sessions.DeleteExpired(ctx, time.Now().Add(-ttl))
}

// fail moves the session to failed and persists it, returning the original
// cause for the caller to report.
func (s *ImportService) fail(ctx context.Context, sess *session.Session, cause error) error {
	sess.Fail(cause.Error())
	if err := s.sessions.Update(ctx, sess); err != nil {
		composables.UseLogger(ctx).WithError(err).Error("failed to persist failed import session")
	}
	s.publisher.Publish(session.ExecutedEvent{Result: *sess})
	return cause
}

func (s *ImportService) require(ctx context.Context, p *permission.Permission) error {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return composables.ErrNoUser
	}
	if !s.rbac.UserCan(u, p) {
		return ErrForbidden
	}
	return nil
}
