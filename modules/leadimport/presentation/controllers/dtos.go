package controllers

import (
	"time"

	"github.com/vantagecrm/vantage/modules/leadimport/dedupe"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/importtemplate"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
)

// MappingRequest is the mapping-phase submission body.
type MappingRequest struct {
	Mappings       map[string]string `json:"mappings"`
	MergeRules     []MergeRuleDTO    `json:"merge_rules"`
	IgnoredColumns []string          `json:"ignored_columns"`
	SaveAsTemplate bool              `json:"save_as_template"`
	TemplateName   string            `json:"template_name"`
}

type MergeRuleDTO struct {
	Target    string   `json:"target"`
	Sources   []string `json:"sources"`
	Separator string   `json:"separator"`
}

func (r *MappingRequest) ToBundle() mapping.Bundle {
	b := mapping.Bundle{
		Mappings:       make(map[string]mapping.CanonicalField, len(r.Mappings)),
		IgnoredColumns: r.IgnoredColumns,
	}
	for column, field := range r.Mappings {
		b.Mappings[column] = mapping.CanonicalField(field)
	}
	for _, rule := range r.MergeRules {
		b.MergeRules = append(b.MergeRules, mapping.MergeRule{
			Target:    mapping.CanonicalField(rule.Target),
			Sources:   rule.Sources,
			Separator: rule.Separator,
		})
	}
	return b
}

// ExecuteRequest carries the per-row duplicate decisions.
type ExecuteRequest struct {
	DuplicateDecisions map[int]string `json:"duplicate_decisions"`
}

func (r *ExecuteRequest) ToDecisions() map[int]session.Decision {
	if r.DuplicateDecisions == nil {
		return nil
	}
	out := make(map[int]session.Decision, len(r.DuplicateDecisions))
	for row, d := range r.DuplicateDecisions {
		out[row] = session.Decision(d)
	}
	return out
}

// TemplateRequest is the template create/update body.
type TemplateRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Mappings       map[string]string `json:"mappings"`
	MergeRules     []MergeRuleDTO    `json:"merge_rules"`
	IgnoredColumns []string          `json:"ignored_columns"`
	IsDefault      bool              `json:"is_default"`
}

func (r *TemplateRequest) ToBundle() mapping.Bundle {
	req := MappingRequest{
		Mappings:       r.Mappings,
		MergeRules:     r.MergeRules,
		IgnoredColumns: r.IgnoredColumns,
	}
	return req.ToBundle()
}

// UploadResponse answers a successful upload with everything the mapping
// step needs to render.
type UploadResponse struct {
	SessionID          string                            `json:"session_id"`
	FileName           string                            `json:"file_name"`
	TotalRows          int                               `json:"total_rows"`
	DetectedColumns    []mapping.DetectedColumn          `json:"detected_columns"`
	RemovedColumns     []string                          `json:"removed_columns"`
	SuggestedMappings  map[string]mapping.CanonicalField `json:"suggested_mappings"`
	SampleRows         []normalize.RawRow                `json:"sample_rows"`
	AvailableFields    []FieldDTO                        `json:"available_crm_fields"`
	AvailableTemplates []TemplateResponse                `json:"available_templates"`
}

type FieldDTO struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

func availableFields() []FieldDTO {
	fields := mapping.KnownFields()
	out := make([]FieldDTO, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldDTO{
			Name:     string(f),
			Label:    mapping.FieldLabels[f],
			Required: mapping.IsRequiredField(f),
		})
	}
	return out
}

// MappingResponse confirms an accepted mapping.
type MappingResponse struct {
	SessionID    string                            `json:"session_id"`
	Phase        string                            `json:"phase"`
	MappedFields map[string]mapping.CanonicalField `json:"mapped_fields"`
}

// PreviewResponse is the normalization preview.
type PreviewResponse struct {
	TotalRows        int                       `json:"total_rows"`
	ValidRows        int                       `json:"valid_rows"`
	InvalidCount     int                       `json:"invalid_count"`
	ValidationErrors []normalize.RowError      `json:"validation_errors"`
	SampleNormalized []normalize.NormalizedRow `json:"sample_normalized"`
}

// DuplicatesResponse groups classifications by kind; unique rows are
// summarized by count only.
type DuplicatesResponse struct {
	InFileDuplicates   []dedupe.Classification `json:"in_file_duplicates"`
	ExistingDuplicates []dedupe.Classification `json:"existing_duplicates"`
	SmartMatches       []dedupe.Classification `json:"smart_matches"`
	TotalDuplicates    int                     `json:"total_duplicates"`
	UniqueCount        int                     `json:"unique_count"`
}

func toDuplicatesResponse(a dedupe.Analysis) DuplicatesResponse {
	out := DuplicatesResponse{
		InFileDuplicates:   []dedupe.Classification{},
		ExistingDuplicates: []dedupe.Classification{},
		SmartMatches:       []dedupe.Classification{},
		UniqueCount:        a.UniqueCount,
	}
	for _, c := range a.Classifications {
		switch c.Kind {
		case dedupe.KindInFile:
			out.InFileDuplicates = append(out.InFileDuplicates, c)
		case dedupe.KindExactExisting:
			out.ExistingDuplicates = append(out.ExistingDuplicates, c)
		case dedupe.KindFuzzyExisting:
			out.SmartMatches = append(out.SmartMatches, c)
		}
	}
	out.TotalDuplicates = len(out.InFileDuplicates) + len(out.ExistingDuplicates) + len(out.SmartMatches)
	return out
}

// ExecuteResponse is the final summary.
type ExecuteResponse struct {
	SessionID       string             `json:"session_id"`
	Phase           string             `json:"phase"`
	Summary         SummaryDTO         `json:"summary"`
	InsertedLeadIDs []string           `json:"inserted_lead_ids"`
	UpdatedLeadIDs  []string           `json:"updated_lead_ids"`
	Errors          []session.RowError `json:"errors"`
}

type SummaryDTO struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func toExecuteResponse(s *session.Session) ExecuteResponse {
	out := ExecuteResponse{
		SessionID:       s.ID().String(),
		Phase:           string(s.Phase()),
		InsertedLeadIDs: []string{},
		UpdatedLeadIDs:  []string{},
		Errors:          []session.RowError{},
	}
	if summary := s.Summary(); summary != nil {
		out.Summary = SummaryDTO{
			Total:    summary.Total,
			Inserted: summary.Inserted,
			Updated:  summary.Updated,
			Skipped:  summary.Skipped,
			Failed:   len(summary.Errors),
		}
		if summary.InsertedLeadIDs != nil {
			out.InsertedLeadIDs = summary.InsertedLeadIDs
		}
		if summary.UpdatedLeadIDs != nil {
			out.UpdatedLeadIDs = summary.UpdatedLeadIDs
		}
		if summary.Errors != nil {
			out.Errors = summary.Errors
		}
	}
	return out
}

// StatusResponse is the polled session view.
type StatusResponse struct {
	SessionID     string `json:"session_id"`
	FileName      string `json:"file_name"`
	Phase         string `json:"phase"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toStatusResponse(s *session.Session) StatusResponse {
	return StatusResponse{
		SessionID:     s.ID().String(),
		FileName:      s.FileName(),
		Phase:         string(s.Phase()),
		FailureReason: s.FailureReason(),
		CreatedAt:     s.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

// TemplateResponse is the template wire form.
type TemplateResponse struct {
	ID             string                            `json:"id"`
	Name           string                            `json:"name"`
	Description    string                            `json:"description"`
	Mappings       map[string]mapping.CanonicalField `json:"mappings"`
	MergeRules     []mapping.MergeRule               `json:"merge_rules"`
	IgnoredColumns []string                          `json:"ignored_columns"`
	IsDefault      bool                              `json:"is_default"`
	CreatedBy      string                            `json:"created_by,omitempty"`
}

func toTemplateResponse(t *importtemplate.Template) TemplateResponse {
	b := t.Bundle()
	out := TemplateResponse{
		ID:             t.ID().String(),
		Name:           t.Name(),
		Description:    t.Description(),
		Mappings:       b.Mappings,
		MergeRules:     b.MergeRules,
		IgnoredColumns: b.IgnoredColumns,
		IsDefault:      t.IsDefault(),
		CreatedBy:      t.CreatedBy(),
	}
	if out.Mappings == nil {
		out.Mappings = map[string]mapping.CanonicalField{}
	}
	if out.MergeRules == nil {
		out.MergeRules = []mapping.MergeRule{}
	}
	if out.IgnoredColumns == nil {
		out.IgnoredColumns = []string{}
	}
	return out
}

func toTemplateResponses(ts []*importtemplate.Template) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTemplateResponse(t))
	}
	return out
}
