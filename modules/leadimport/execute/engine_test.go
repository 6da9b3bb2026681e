package execute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
	"github.com/vantagecrm/vantage/pkg/eventbus"
)

type memoryLeadRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]lead.Lead
}

func newMemoryLeadRepo(existing ...lead.Lead) *memoryLeadRepo {
	r := &memoryLeadRepo{leads: make(map[uuid.UUID]lead.Lead)}
	for _, l := range existing {
		r.leads[l.ID()] = l
	}
	return r
}

func (r *memoryLeadRepo) GetPaginated(_ context.Context, _ *lead.FindParams) ([]lead.Lead, int64, error) {
	all, _ := r.GetAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *memoryLeadRepo) GetByID(_ context.Context, id uuid.UUID) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return lead.Lead{}, lead.ErrNotFound
	}
	return l, nil
}

func (r *memoryLeadRepo) GetByEmail(_ context.Context, email string) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.Email() == email {
			return l, nil
		}
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (r *memoryLeadRepo) GetByPhone(_ context.Context, phone string) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.Phone() == phone {
			return l, nil
		}
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (r *memoryLeadRepo) GetAll(_ context.Context) ([]lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]lead.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryLeadRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.leads)), nil
}

// Create assigns the id the way the database does via RETURNING.
func (r *memoryLeadRepo) Create(_ context.Context, l lead.Lead) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID() == uuid.Nil {
		now := time.Now()
		l = lead.Hydrate(
			uuid.New(), l.FullName(), l.Email(), l.Phone(), l.Company(),
			l.Notes(), l.Source(), l.Status(), l.EstimatedValue(), now, now,
		)
	}
	r.leads[l.ID()] = l
	return l, nil
}

func (r *memoryLeadRepo) Update(_ context.Context, l lead.Lead) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[l.ID()]; !ok {
		return lead.Lead{}, lead.ErrNotFound
	}
	r.leads[l.ID()] = l
	return l, nil
}

func (r *memoryLeadRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return lead.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

// storedLead builds a lead as it would come back from the database, id
// assigned.
func storedLead(name, email string, opts ...lead.Option) lead.Lead {
	l := lead.New(name, email, opts...)
	now := time.Now()
	return lead.Hydrate(
		uuid.New(), l.FullName(), l.Email(), l.Phone(), l.Company(),
		l.Notes(), l.Source(), l.Status(), l.EstimatedValue(), now, now,
	)
}

func row(num int, name, email string) normalize.NormalizedRow {
	return normalize.NormalizedRow{
		Number: num,
		Fields: map[mapping.CanonicalField]string{
			mapping.FieldFullName: name,
			mapping.FieldEmail:    email,
		},
	}
}

func analyze(repo *memoryLeadRepo, rows []normalize.NormalizedRow) dedupe.Analysis {
	existing, _ := repo.GetAll(context.Background())
	return dedupe.NewResolver(existing).Classify(rows)
}

func newTestEngine(repo *memoryLeadRepo) *Engine {
	return NewEngine(repo, eventbus.NewEventPublisher(nil))
}

func TestRun_InsertsUniqueRows(t *testing.T) {
	repo := newMemoryLeadRepo()
	rows := []normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com"),
		row(3, "Grace Hopper", "grace@example.com"),
	}

	summary := newTestEngine(repo).Run(context.Background(), rows, analyze(repo, rows), nil)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Inserted)
	require.Len(t, summary.InsertedLeadIDs, 2)
	assert.Empty(t, summary.Errors)

	// every insert gets its own id
	assert.NotEqual(t, summary.InsertedLeadIDs[0], summary.InsertedLeadIDs[1])
	for _, id := range summary.InsertedLeadIDs {
		assert.NotEqual(t, uuid.Nil.String(), id)
	}

	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 2, count)
}

func TestRun_InFileDuplicateSkippedByDefault(t *testing.T) {
	repo := newMemoryLeadRepo()
	rows := []normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com"),
		row(3, "A. Lovelace", "ada@example.com"),
	}

	summary := newTestEngine(repo).Run(context.Background(), rows, analyze(repo, rows), nil)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRun_InFileDuplicateCreateOverride(t *testing.T) {
	repo := newMemoryLeadRepo()
	rows := []normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com"),
		row(3, "A. Lovelace", "ada@example.com"),
	}

	summary := newTestEngine(repo).Run(context.Background(), rows, analyze(repo, rows),
		map[int]session.Decision{3: session.DecisionCreate})

	assert.Equal(t, 2, summary.Inserted)
	assert.Zero(t, summary.Skipped)
}

func TestRun_ExistingDuplicateSkippedByDefault(t *testing.T) {
	existing := storedLead("Ada Lovelace", "ada@example.com")
	repo := newMemoryLeadRepo(existing)
	rows := []normalize.NormalizedRow{row(2, "Ada L", "ada@example.com")}

	summary := newTestEngine(repo).Run(context.Background(), rows, analyze(repo, rows), nil)

	assert.Zero(t, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRun_UpdateDecisionMergesExisting(t *testing.T) {
	existing := storedLead("Ada Lovelace", "ada@example.com", lead.WithCompany("Analytical Engines Ltd"))
	repo := newMemoryLeadRepo(existing)
	rows := []normalize.NormalizedRow{
		{
			Number: 2,
			Fields: map[mapping.CanonicalField]string{
				mapping.FieldFullName: "Ada King",
				mapping.FieldEmail:    "ada@example.com",
				mapping.FieldPhone:    "555-010-0100",
			},
		},
	}

	summary := newTestEngine(repo).Run(context.Background(), rows, analyze(repo, rows),
		map[int]session.Decision{2: session.DecisionUpdate})

	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Inserted)
	require.Contains(t, summary.UpdatedLeadIDs, existing.ID().String())

	updated, err := repo.GetByID(context.Background(), existing.ID())
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.FullName())
	assert.Equal(t, "555-010-0100", updated.Phone())
	// fields absent from the import keep their stored values
	assert.Equal(t, "Analytical Engines Ltd", updated.Company())
}

func TestRun_AllSkipIsIdempotent(t *testing.T) {
	existing := storedLead("Ada Lovelace", "ada@example.com")
	repo := newMemoryLeadRepo(existing)
	rows := []normalize.NormalizedRow{row(2, "Ada L", "ada@example.com")}
	engine := newTestEngine(repo)

	first := engine.Run(context.Background(), rows, analyze(repo, rows), nil)
	second := engine.Run(context.Background(), rows, analyze(repo, rows), nil)

	assert.Zero(t, first.Inserted+first.Updated)
	assert.Zero(t, second.Inserted+second.Updated)
	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRun_RowFailureDoesNotAbortBatch(t *testing.T) {
	repo := newMemoryLeadRepo()
	rows := []normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com"),
		row(3, "Grace Hopper", "grace@example.com"),
	}
	analysis := analyze(repo, rows)
	// point row 2's update at a lead that no longer exists
	missing := dedupe.LeadSnapshot{ID: uuid.New().String(), FullName: "Ghost", Email: "ghost@example.com"}
	for i := range analysis.Classifications {
		if analysis.Classifications[i].Row == 2 {
			analysis.Classifications[i].Kind = dedupe.KindExactExisting
			analysis.Classifications[i].MatchType = dedupe.MatchEmail
			analysis.Classifications[i].Existing = &missing
		}
	}

	summary := newTestEngine(repo).Run(context.Background(), rows, analysis,
		map[int]session.Decision{2: session.DecisionUpdate})

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Row)
	assert.Equal(t, 1, summary.Inserted, "row 3 must still insert")
}
