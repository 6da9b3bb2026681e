package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
)

// SampleSize bounds the normalized-row preview returned to the client.
const SampleSize = 10

// RawRow is one parsed source row. Number is 1-based and matches the source
// file so user-facing errors can point at the right line.
type RawRow struct {
	Number int               `json:"number"`
	Values map[string]string `json:"values"`
}

// RowError attributes one validation failure to a row and field.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NormalizedRow holds canonical field values for one source row plus its
// validation errors, in rule-evaluation order.
type NormalizedRow struct {
	Number int                               `json:"number"`
	Fields map[mapping.CanonicalField]string `json:"fields"`
	Errors []RowError                        `json:"errors,omitempty"`
}

func (r NormalizedRow) Valid() bool {
	return len(r.Errors) == 0
}

// Result is the full normalization outcome. ValidRows+InvalidCount always
// equals TotalRows.
type Result struct {
	TotalRows    int             `json:"total_rows"`
	ValidRows    int             `json:"valid_rows"`
	InvalidCount int             `json:"invalid_count"`
	Errors       []RowError      `json:"errors,omitempty"`
	Rows         []NormalizedRow `json:"rows"`
}

// Sample returns the first SampleSize normalized rows for preview.
func (r Result) Sample() []NormalizedRow {
	if len(r.Rows) <= SampleSize {
		return r.Rows
	}
	return r.Rows[:SampleSize]
}

// ValidOnly returns the valid rows in row order.
func (r Result) ValidOnly() []NormalizedRow {
	out := make([]NormalizedRow, 0, r.ValidRows)
	for _, row := range r.Rows {
		if row.Valid() {
			out = append(out, row)
		}
	}
	return out
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// phone values may contain only digits, +, space, - and parentheses.
var phoneCharset = regexp.MustCompile(`^[0-9+\s\-()]+$`)

// Run applies the bundle to every raw row and validates the result. Rows
// whose mapped values are all empty are dropped before normalization; every
// surviving row is validated independently with all failures collected.
// Pure transformation; persistence is the session's concern.
func Run(rows []RawRow, bundle mapping.Bundle) Result {
	result := Result{}
	for _, raw := range rows {
		fields := canonicalize(bundle.ExtractRow(raw.Values))
		if len(fields) == 0 {
			continue
		}
		row := NormalizedRow{
			Number: raw.Number,
			Fields: fields,
			Errors: validateRow(raw.Number, fields),
		}
		result.Rows = append(result.Rows, row)
		result.TotalRows++
		if row.Valid() {
			result.ValidRows++
		} else {
			result.InvalidCount++
			result.Errors = append(result.Errors, row.Errors...)
		}
	}
	return result
}

func validateRow(rowNum int, fields map[mapping.CanonicalField]string) []RowError {
	var errs []RowError

	addError := func(field mapping.CanonicalField, reason string) {
		errs = append(errs, RowError{Row: rowNum, Field: string(field), Reason: reason})
	}

	for _, required := range mapping.RequiredFields() {
		if fields[required] == "" {
			addError(required, "required field missing")
		}
	}

	if email := fields[mapping.FieldEmail]; email != "" && !emailPattern.MatchString(email) {
		addError(mapping.FieldEmail, "validation failed: email")
	}

	if phone := fields[mapping.FieldPhone]; phone != "" && !phoneCharset.MatchString(phone) {
		addError(mapping.FieldPhone, "validation failed: phone")
	}

	if source := fields[mapping.FieldSource]; source != "" && !lead.IsValidSource(source) {
		addError(mapping.FieldSource, fmt.Sprintf("invalid value: %s", source))
	}

	if status := fields[mapping.FieldStatus]; status != "" && !lead.IsValidStatus(status) {
		addError(mapping.FieldStatus, fmt.Sprintf("invalid value: %s", status))
	}

	return errs
}

func canonicalize(fields map[mapping.CanonicalField]string) map[mapping.CanonicalField]string {
	out := make(map[mapping.CanonicalField]string, len(fields))
	for field, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if field == mapping.FieldEmail {
			value = strings.ToLower(value)
		}
		out[field] = value
	}
	return out
}
