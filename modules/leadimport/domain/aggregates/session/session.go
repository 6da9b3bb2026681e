package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
)

// Phase is the wizard stage a session is in. Transitions are linear with two
// exceptions: mapping can be resubmitted from any pre-execution phase, and
// any non-terminal phase can move to failed.
type Phase string

const (
	PhaseMapping     Phase = "mapping"
	PhaseNormalizing Phase = "normalizing"
	PhaseReady       Phase = "ready"
	PhaseExecuting   Phase = "executing"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// Decision is the user's resolution for one duplicate row.
type Decision string

const (
	DecisionSkip   Decision = "skip"
	DecisionUpdate Decision = "update"
	DecisionCreate Decision = "create"
)

func IsValidDecision(d Decision) bool {
	switch d {
	case DecisionSkip, DecisionUpdate, DecisionCreate:
		return true
	}
	return false
}

// ExecutionSummary is the final tally of an execution run. Row errors are
// recorded rather than aborting the run, so Inserted+Updated+Skipped+
// len(Errors) accounts for every row handed to the engine.
type ExecutionSummary struct {
	Total           int        `json:"total"`
	Inserted        int        `json:"inserted"`
	Updated         int        `json:"updated"`
	Skipped         int        `json:"skipped"`
	Errors          []RowError `json:"errors,omitempty"`
	InsertedLeadIDs []string   `json:"inserted_lead_ids,omitempty"`
	UpdatedLeadIDs  []string   `json:"updated_lead_ids,omitempty"`
}

// RowError records a row the execution engine could not commit.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Session is the import wizard's state aggregate. All artifacts produced by
// earlier phases travel with it so a later phase and the API can reach them
// without reparsing the upload.
type Session struct {
	id             uuid.UUID
	fileName       string
	createdBy      string
	phase          Phase
	columns        []mapping.DetectedColumn
	removedColumns []string
	rawRows        []normalize.RawRow
	suggestions    map[string]mapping.CanonicalField
	bundle         *mapping.Bundle
	normalization  *normalize.Result
	analysis       *dedupe.Analysis
	decisions      map[int]Decision
	summary        *ExecutionSummary
	failureReason  string
	createdAt      time.Time
	updatedAt      time.Time
}

// New starts a session in the mapping phase from an upload's parse result.
func New(fileName, createdBy string, columns []mapping.DetectedColumn, removedColumns []string, rows []normalize.RawRow, suggestions map[string]mapping.CanonicalField) *Session {
	now := time.Now()
	return &Session{
		id:             uuid.New(),
		fileName:       fileName,
		createdBy:      createdBy,
		phase:          PhaseMapping,
		columns:        columns,
		removedColumns: removedColumns,
		rawRows:        rows,
		suggestions:    suggestions,
		createdAt:      now,
		updatedAt:      now,
	}
}

// Hydrate rebuilds a session from storage without phase checks.
func Hydrate(
	id uuid.UUID,
	fileName, createdBy string,
	phase Phase,
	columns []mapping.DetectedColumn,
	removedColumns []string,
	rows []normalize.RawRow,
	suggestions map[string]mapping.CanonicalField,
	bundle *mapping.Bundle,
	normalization *normalize.Result,
	analysis *dedupe.Analysis,
	decisions map[int]Decision,
	summary *ExecutionSummary,
	failureReason string,
	createdAt, updatedAt time.Time,
) *Session {
	return &Session{
		id:             id,
		fileName:       fileName,
		createdBy:      createdBy,
		phase:          phase,
		columns:        columns,
		removedColumns: removedColumns,
		rawRows:        rows,
		suggestions:    suggestions,
		bundle:         bundle,
		normalization:  normalization,
		analysis:       analysis,
		decisions:      decisions,
		summary:        summary,
		failureReason:  failureReason,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (s *Session) ID() uuid.UUID                                  { return s.id }
func (s *Session) FileName() string                               { return s.fileName }
func (s *Session) CreatedBy() string                              { return s.createdBy }
func (s *Session) Phase() Phase                                   { return s.phase }
func (s *Session) Columns() []mapping.DetectedColumn              { return s.columns }
func (s *Session) RemovedColumns() []string                       { return s.removedColumns }
func (s *Session) RawRows() []normalize.RawRow                    { return s.rawRows }
func (s *Session) Suggestions() map[string]mapping.CanonicalField { return s.suggestions }
func (s *Session) Bundle() *mapping.Bundle                        { return s.bundle }
func (s *Session) Normalization() *normalize.Result               { return s.normalization }
func (s *Session) Analysis() *dedupe.Analysis                     { return s.analysis }
func (s *Session) Decisions() map[int]Decision                    { return s.decisions }
func (s *Session) Summary() *ExecutionSummary                     { return s.summary }
func (s *Session) FailureReason() string                          { return s.failureReason }
func (s *Session) CreatedAt() time.Time                           { return s.createdAt }
func (s *Session) UpdatedAt() time.Time                           { return s.updatedAt }

// IsTerminal reports whether no further transitions are possible.
func (s *Session) IsTerminal() bool {
	return s.phase == PhaseCompleted || s.phase == PhaseFailed
}

// SubmitMapping validates and records the column mapping. Resubmitting from
// normalizing or ready discards the downstream artifacts, since they were
// derived from the previous mapping.
func (s *Session) SubmitMapping(b mapping.Bundle) error {
	switch s.phase {
	case PhaseMapping, PhaseNormalizing, PhaseReady:
	default:
		return &PhaseError{ID: s.id, Phase: s.phase, Action: "submit mapping"}
	}
	if err := mapping.Validate(b); err != nil {
		return err
	}
	s.bundle = &b
	s.normalization = nil
	s.analysis = nil
	s.decisions = nil
	s.phase = PhaseNormalizing
	s.touch()
	return nil
}

// CompleteNormalization stores the normalization and dedupe artifacts and
// moves the session to ready.
func (s *Session) CompleteNormalization(result normalize.Result, analysis dedupe.Analysis) error {
	if s.phase != PhaseNormalizing {
		return &PhaseError{ID: s.id, Phase: s.phase, Action: "complete normalization"}
	}
	s.normalization = &result
	s.analysis = &analysis
	s.phase = PhaseReady
	s.touch()
	return nil
}

// BeginExecution records the duplicate decisions and moves to executing.
// Rows without a decision default to skip at execution time, so decisions
// may be partial. A session already executing reports ErrExecuteInProgress
// so the caller can answer with a conflict instead of a generic phase error.
func (s *Session) BeginExecution(decisions map[int]Decision) error {
	if s.phase == PhaseExecuting {
		return ErrExecuteInProgress
	}
	if s.phase != PhaseReady {
		return &PhaseError{ID: s.id, Phase: s.phase, Action: "execute"}
	}
	for row, d := range decisions {
		if !IsValidDecision(d) {
			return &InvalidDecisionError{Row: row, Decision: d}
		}
	}
	s.decisions = decisions
	s.phase = PhaseExecuting
	s.touch()
	return nil
}

// CompleteExecution stores the summary and finishes the session.
func (s *Session) CompleteExecution(summary ExecutionSummary) error {
	if s.phase != PhaseExecuting {
		return &PhaseError{ID: s.id, Phase: s.phase, Action: "complete execution"}
	}
	s.summary = &summary
	s.phase = PhaseCompleted
	s.touch()
	return nil
}

// Fail marks the session failed with a reason. Failing a terminal session is
// a no-op so cleanup paths can call it unconditionally.
func (s *Session) Fail(reason string) {
	if s.IsTerminal() {
		return
	}
	s.failureReason = reason
	s.phase = PhaseFailed
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
