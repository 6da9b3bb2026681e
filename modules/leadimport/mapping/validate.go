package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// Conflict names a source column rejected during mapping validation.
type Conflict struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// ValidationError reports every mapping conflict and missing required field
// of a submission at once.
type ValidationError struct {
	Conflicts     []Conflict       `json:"conflicts,omitempty"`
	MissingFields []CanonicalField `json:"missing_fields,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Conflicts) > 0 {
		cols := make([]string, 0, len(e.Conflicts))
		for _, c := range e.Conflicts {
			cols = append(cols, fmt.Sprintf("%s (%s)", c.Column, c.Reason))
		}
		parts = append(parts, "conflicting columns: "+strings.Join(cols, ", "))
	}
	if len(e.MissingFields) > 0 {
		fields := make([]string, 0, len(e.MissingFields))
		for _, f := range e.MissingFields {
			fields = append(fields, string(f))
		}
		parts = append(parts, "missing required fields: "+strings.Join(fields, ", "))
	}
	if len(parts) == 0 {
		return "invalid mapping"
	}
	return strings.Join(parts, "; ")
}

// Validate checks a bundle before a mapping submission is accepted:
//   - a source column may appear in at most one merge rule;
//   - a column consumed by a merge rule must not carry a direct mapping;
//   - a column must not be both mapped and ignored;
//   - a canonical field may receive at most one direct mapping;
//   - full_name and email must be covered by a mapping or a merge rule.
//
// Returns *ValidationError listing every violation, or nil.
func Validate(b Bundle) error {
	conflicts := collectConflicts(b)

	covered := make(map[CanonicalField]bool)
	for _, field := range b.Mappings {
		covered[field] = true
	}
	for _, rule := range b.MergeRules {
		covered[rule.Target] = true
	}

	var missing []CanonicalField
	for _, required := range RequiredFields() {
		if !covered[required] {
			missing = append(missing, required)
		}
	}

	if len(conflicts) > 0 || len(missing) > 0 {
		return &ValidationError{Conflicts: conflicts, MissingFields: missing}
	}
	return nil
}

// ValidateShape runs the conflict checks without requiring full_name and
// email coverage. Saved templates use it, since a template may deliberately
// map only part of a file.
func ValidateShape(b Bundle) error {
	if conflicts := collectConflicts(b); len(conflicts) > 0 {
		return &ValidationError{Conflicts: conflicts}
	}
	return nil
}

func collectConflicts(b Bundle) []Conflict {
	var conflicts []Conflict

	mergeSeen := make(map[string]bool)
	for _, rule := range b.MergeRules {
		if !IsKnownField(string(rule.Target)) {
			conflicts = append(conflicts, Conflict{
				Column: string(rule.Target),
				Reason: "unknown target field",
			})
		}
		for _, col := range rule.Sources {
			if mergeSeen[col] {
				conflicts = append(conflicts, Conflict{
					Column: col,
					Reason: "column appears in more than one merge rule",
				})
				continue
			}
			mergeSeen[col] = true
		}
	}

	columns := make([]string, 0, len(b.Mappings))
	for column := range b.Mappings {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	targetSeen := make(map[CanonicalField]string)
	for _, column := range columns {
		field := b.Mappings[column]
		if !IsKnownField(string(field)) {
			conflicts = append(conflicts, Conflict{
				Column: column,
				Reason: "unknown target field " + string(field),
			})
			continue
		}
		if mergeSeen[column] {
			conflicts = append(conflicts, Conflict{
				Column: column,
				Reason: "column used by a merge rule and directly mapped",
			})
		}
		if b.isIgnored(column) {
			conflicts = append(conflicts, Conflict{
				Column: column,
				Reason: "column both mapped and ignored",
			})
		}
		if prev, ok := targetSeen[field]; ok {
			conflicts = append(conflicts, Conflict{
				Column: column,
				Reason: fmt.Sprintf("field %s already mapped from column %s", field, prev),
			})
			continue
		}
		targetSeen[field] = column
	}

	return conflicts
}
