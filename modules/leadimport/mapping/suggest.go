package mapping

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DetectedColumn is a source column with sampled values from the uploaded
// file's first rows.
type DetectedColumn struct {
	Name    string   `json:"name"`
	Samples []string `json:"samples"`
}

var (
	emailShapePattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneShapePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,}$`)
)

// Suggest proposes a best-effort mapping from source column names to
// canonical fields. Exact alias matches win, then fuzzy name similarity,
// then value-shape heuristics over sampled values. Each canonical field is
// assigned at most once; earlier columns win. Pure function.
func Suggest(columns []DetectedColumn) map[string]CanonicalField {
	out := make(map[string]CanonicalField)
	taken := make(map[CanonicalField]bool)

	assign := func(column string, field CanonicalField) bool {
		if taken[field] {
			return false
		}
		out[column] = field
		taken[field] = true
		return true
	}

	// Pass 1: exact alias matches.
	for _, col := range columns {
		key := normalizeHeader(col.Name)
		if field, ok := columnAliases[key]; ok {
			assign(col.Name, field)
		}
	}

	// Pass 2: fuzzy name similarity against the alias table.
	for _, col := range columns {
		if _, done := out[col.Name]; done {
			continue
		}
		if field, ok := fuzzyAliasMatch(normalizeHeader(col.Name)); ok {
			assign(col.Name, field)
		}
	}

	// Pass 3: value-shape heuristics.
	for _, col := range columns {
		if _, done := out[col.Name]; done {
			continue
		}
		if field, ok := shapeMatch(col.Samples); ok {
			assign(col.Name, field)
		}
	}

	return out
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// fuzzyAliasMatch finds the alias with the smallest Levenshtein distance to
// the header, accepting only close matches relative to the header length.
func fuzzyAliasMatch(header string) (CanonicalField, bool) {
	if header == "" {
		return "", false
	}

	best := ""
	bestDistance := -1
	for alias := range columnAliases {
		d := fuzzy.LevenshteinDistance(header, alias)
		if bestDistance == -1 || d < bestDistance || (d == bestDistance && alias < best) {
			best = alias
			bestDistance = d
		}
	}

	// Allow roughly one edit per four characters.
	maxDistance := len(header) / 4
	if maxDistance < 1 {
		maxDistance = 1
	}
	if bestDistance >= 0 && bestDistance <= maxDistance {
		return columnAliases[best], true
	}
	return "", false
}

// shapeMatch inspects sample values: a column whose non-empty samples all
// look like emails suggests the email field; likewise for phones.
func shapeMatch(samples []string) (CanonicalField, bool) {
	nonEmpty := 0
	emails := 0
	phones := 0
	for _, v := range samples {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if emailShapePattern.MatchString(v) {
			emails++
		}
		if phoneShapePattern.MatchString(v) {
			phones++
		}
	}
	if nonEmpty == 0 {
		return "", false
	}
	if emails == nonEmpty {
		return FieldEmail, true
	}
	if phones == nonEmpty {
		return FieldPhone, true
	}
	return "", false
}
