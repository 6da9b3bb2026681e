package mapping

import "strings"

// MergeRule composes several source columns into one target field, joined
// with Separator. Columns with empty values for a row are skipped so the
// separator never leads, trails or doubles.
type MergeRule struct {
	Target    CanonicalField `json:"target"`
	Sources   []string       `json:"sources"`
	Separator string         `json:"separator"`
}

// Apply joins the present source values of one raw row.
func (r MergeRule) Apply(row map[string]string) string {
	parts := make([]string, 0, len(r.Sources))
	for _, col := range r.Sources {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, r.Separator)
}

// Bundle is the full column configuration of an import: direct mappings,
// merge rules and ignored columns. Sessions carry one and templates persist
// one for reuse.
type Bundle struct {
	Mappings       map[string]CanonicalField `json:"mappings"`
	MergeRules     []MergeRule               `json:"merge_rules"`
	IgnoredColumns []string                  `json:"ignored_columns"`
}

func (b Bundle) isIgnored(column string) bool {
	for _, c := range b.IgnoredColumns {
		if c == column {
			return true
		}
	}
	return false
}

func (b Bundle) mergeConsumed(column string) bool {
	for _, rule := range b.MergeRules {
		for _, c := range rule.Sources {
			if c == column {
				return true
			}
		}
	}
	return false
}

// ExtractRow builds canonical field values for one raw row: merge rules run
// first, then direct mappings for columns not consumed by a merge rule and
// not ignored. Empty results are omitted.
func (b Bundle) ExtractRow(row map[string]string) map[CanonicalField]string {
	out := make(map[CanonicalField]string)
	for _, rule := range b.MergeRules {
		if v := rule.Apply(row); v != "" {
			out[rule.Target] = v
		}
	}
	for column, field := range b.Mappings {
		if b.isIgnored(column) || b.mergeConsumed(column) {
			continue
		}
		if v := strings.TrimSpace(row[column]); v != "" {
			out[field] = v
		}
	}
	return out
}
