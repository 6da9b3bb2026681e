package execute

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/eventbus"
)

// Engine commits an analyzed import. Every row is processed in its own
// transaction so one bad row cannot roll back the rest of the file.
type Engine struct {
	leads     lead.Repository
	publisher eventbus.EventBus
}

func NewEngine(leads lead.Repository, publisher eventbus.EventBus) *Engine {
	return &Engine{leads: leads, publisher: publisher}
}

// Run applies the user's duplicate decisions to the valid rows.
// Rows without a decision fall back to the safe default for their
// classification: unique rows insert, every duplicate kind skips.
// Row-level failures are recorded in the summary instead of stopping the run.
func (e *Engine) Run(
	ctx context.Context,
	rows []normalize.NormalizedRow,
	analysis dedupe.Analysis,
	decisions map[int]session.Decision,
) session.ExecutionSummary {
	byRow := make(map[int]dedupe.Classification, len(analysis.Classifications))
	for _, c := range analysis.Classifications {
		byRow[c.Row] = c
	}

	logger := composables.UseLogger(ctx)
	summary := session.ExecutionSummary{Total: len(rows)}
	for _, row := range rows {
		c, ok := byRow[row.Number]
		if !ok {
			// a row the resolver never saw is treated as unique
			c = dedupe.Classification{Row: row.Number, Kind: dedupe.KindUnique}
		}
		if err := e.applyRow(ctx, row, c, decisions[row.Number], &summary); err != nil {
			logger.WithFields(logrus.Fields{
				"row":  row.Number,
				"kind": c.Kind,
			}).WithError(err).Error("import row failed")
			summary.Errors = append(summary.Errors, session.RowError{
				Row:    row.Number,
				Reason: err.Error(),
			})
		}
	}
	return summary
}

func (e *Engine) applyRow(
	ctx context.Context,
	row normalize.NormalizedRow,
	c dedupe.Classification,
	decision session.Decision,
	summary *session.ExecutionSummary,
) error {
	switch c.Kind {
	case dedupe.KindUnique:
		return e.insert(ctx, row, summary)
	case dedupe.KindInFile:
		if decision == session.DecisionCreate {
			return e.insert(ctx, row, summary)
		}
		summary.Skipped++
		return nil
	case dedupe.KindExactExisting, dedupe.KindFuzzyExisting:
		switch decision {
		case session.DecisionCreate:
			return e.insert(ctx, row, summary)
		case session.DecisionUpdate:
			return e.update(ctx, row, c, summary)
		default:
			summary.Skipped++
			return nil
		}
	default:
		summary.Skipped++
		return nil
	}
}

func (e *Engine) insert(ctx context.Context, row normalize.NormalizedRow, summary *session.ExecutionSummary) error {
	created, err := inRow(ctx, func(txCtx context.Context) (lead.Lead, error) {
		return e.leads.Create(txCtx, leadFromRow(row))
	})
	if err != nil {
		return err
	}
	summary.Inserted++
	summary.InsertedLeadIDs = append(summary.InsertedLeadIDs, created.ID().String())
	e.publisher.Publish(lead.CreatedEvent{Result: created})
	return nil
}

func (e *Engine) update(ctx context.Context, row normalize.NormalizedRow, c dedupe.Classification, summary *session.ExecutionSummary) error {
	if c.Existing == nil {
		// update decision without a matched lead should not happen; insert
		// would duplicate, so treat it as a row error
		return lead.ErrNotFound
	}
	id, err := uuid.Parse(c.Existing.ID)
	if err != nil {
		return err
	}
	updated, err := inRow(ctx, func(txCtx context.Context) (lead.Lead, error) {
		existing, err := e.leads.GetByID(txCtx, id)
		if err != nil {
			return lead.Lead{}, err
		}
		return e.leads.Update(txCtx, existing.Merge(leadFromRow(row)))
	})
	if err != nil {
		return err
	}
	summary.Updated++
	summary.UpdatedLeadIDs = append(summary.UpdatedLeadIDs, updated.ID().String())
	e.publisher.Publish(lead.UpdatedEvent{Result: updated})
	return nil
}

// inRow runs fn in its own transaction when a pool is on the context and
// directly otherwise, so the engine works unchanged against in-memory
// repositories.
func inRow(ctx context.Context, fn func(ctx context.Context) (lead.Lead, error)) (lead.Lead, error) {
	if _, err := composables.UsePool(ctx); err != nil {
		return fn(ctx)
	}
	return composables.InTxResult(ctx, fn)
}

func leadFromRow(row normalize.NormalizedRow) lead.Lead {
	var opts []lead.Option
	if phone := row.Fields[mapping.FieldPhone]; phone != "" {
		opts = append(opts, lead.WithPhone(phone))
	}
	if company := row.Fields[mapping.FieldCompany]; company != "" {
		opts = append(opts, lead.WithCompany(company))
	}
	if notes := row.Fields[mapping.FieldNotes]; notes != "" {
		opts = append(opts, lead.WithNotes(notes))
	}
	if source := row.Fields[mapping.FieldSource]; source != "" {
		opts = append(opts, lead.WithSource(lead.Source(source)))
	}
	if status := row.Fields[mapping.FieldStatus]; status != "" {
		opts = append(opts, lead.WithStatus(lead.Status(status)))
	}
	return lead.New(row.Fields[mapping.FieldFullName], row.Fields[mapping.FieldEmail], opts...)
}
