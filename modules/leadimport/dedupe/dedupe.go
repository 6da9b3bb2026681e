package dedupe

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
)

// Classification kinds. Each incoming row gets exactly one.
const (
	KindUnique        = "unique"
	KindInFile        = "in_file_duplicate"
	KindExactExisting = "exact_existing_duplicate"
	KindFuzzyExisting = "fuzzy_existing_duplicate"
)

// MatchType names the field an exact match was found on.
type MatchType string

const (
	MatchEmail MatchType = "email"
	MatchPhone MatchType = "phone"
)

// FuzzyThreshold is the minimum weighted score for a fuzzy existing match.
const FuzzyThreshold = 0.7

// fieldMatchThreshold is the per-field similarity above which a field is
// listed in MatchedFields.
const fieldMatchThreshold = 0.8

// LeadSnapshot carries the matched existing lead's identifying fields so the
// resolution UI can show them side by side with the incoming row.
type LeadSnapshot struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
}

func snapshotOf(l lead.Lead) LeadSnapshot {
	return LeadSnapshot{
		ID:       l.ID().String(),
		FullName: l.FullName(),
		Email:    l.Email(),
		Phone:    l.Phone(),
		Company:  l.Company(),
	}
}

// Classification is the dedupe verdict for one row. Kind decides which of the
// remaining fields are meaningful: FirstRow for in-file duplicates, MatchType
// and Existing for exact matches, Score, MatchedFields and Existing for fuzzy
// matches.
type Classification struct {
	Row           int           `json:"row"`
	Kind          string        `json:"kind"`
	FirstRow      int           `json:"first_row,omitempty"`
	MatchType     MatchType     `json:"match_type,omitempty"`
	Existing      *LeadSnapshot `json:"existing,omitempty"`
	Score         float64       `json:"score,omitempty"`
	MatchedFields []string      `json:"matched_fields,omitempty"`
}

// Analysis is the dedupe result for a whole file, ordered by row number.
type Analysis struct {
	Classifications []Classification `json:"classifications"`
	UniqueCount     int              `json:"unique_count"`
	InFileCount     int              `json:"in_file_count"`
	ExactCount      int              `json:"exact_count"`
	FuzzyCount      int              `json:"fuzzy_count"`
}

// ByRow returns the classification for a row number.
func (a Analysis) ByRow(row int) (Classification, bool) {
	for _, c := range a.Classifications {
		if c.Row == row {
			return c, true
		}
	}
	return Classification{}, false
}

// NeedsResolution reports whether any row requires a user decision before
// execution can proceed without defaulting to skip.
func (a Analysis) NeedsResolution() bool {
	return a.InFileCount+a.ExactCount+a.FuzzyCount > 0
}

// Resolver classifies incoming rows against a snapshot of existing leads.
// The snapshot is taken once at construction; rows inserted by a concurrent
// import are not considered.
type Resolver struct {
	existing []lead.Lead
	byEmail  map[string]int
	byPhone  map[string]int
}

func NewResolver(existing []lead.Lead) *Resolver {
	r := &Resolver{
		existing: existing,
		byEmail:  make(map[string]int, len(existing)),
		byPhone:  make(map[string]int, len(existing)),
	}
	for i, l := range existing {
		if email := strings.ToLower(l.Email()); email != "" {
			if _, ok := r.byEmail[email]; !ok {
				r.byEmail[email] = i
			}
		}
		if phone := normalizePhone(l.Phone()); phone != "" {
			if _, ok := r.byPhone[phone]; !ok {
				r.byPhone[phone] = i
			}
		}
	}
	return r
}

// Classify runs the three passes over the valid rows: in-file grouping by
// lowercased email, exact match against existing leads by email then phone,
// then weighted fuzzy scoring. Input order does not affect the outcome
// beyond which row of an in-file group counts as first; rows are classified
// in ascending row number.
func (r *Resolver) Classify(rows []normalize.NormalizedRow) Analysis {
	ordered := make([]normalize.NormalizedRow, len(rows))
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	firstByEmail := make(map[string]int)
	var analysis Analysis
	for _, row := range ordered {
		c := r.classifyRow(row, firstByEmail)
		analysis.Classifications = append(analysis.Classifications, c)
		switch c.Kind {
		case KindUnique:
			analysis.UniqueCount++
		case KindInFile:
			analysis.InFileCount++
		case KindExactExisting:
			analysis.ExactCount++
		case KindFuzzyExisting:
			analysis.FuzzyCount++
		}
	}
	return analysis
}

func (r *Resolver) classifyRow(row normalize.NormalizedRow, firstByEmail map[string]int) Classification {
	c := Classification{Row: row.Number, Kind: KindUnique}

	email := strings.ToLower(row.Fields[mapping.FieldEmail])
	if email != "" {
		if first, ok := firstByEmail[email]; ok {
			c.Kind = KindInFile
			c.FirstRow = first
			return c
		}
		firstByEmail[email] = row.Number
	}

	if email != "" {
		if idx, ok := r.byEmail[email]; ok {
			c.Kind = KindExactExisting
			c.MatchType = MatchEmail
			snap := snapshotOf(r.existing[idx])
			c.Existing = &snap
			return c
		}
	} else if phone := normalizePhone(row.Fields[mapping.FieldPhone]); phone != "" {
		// phone is an exact-match key only when the row carries no email;
		// a row whose email matched nothing is not the same lead
		if idx, ok := r.byPhone[phone]; ok {
			c.Kind = KindExactExisting
			c.MatchType = MatchPhone
			snap := snapshotOf(r.existing[idx])
			c.Existing = &snap
			return c
		}
	}

	if best, score, matched := r.bestFuzzy(row); best >= 0 && score >= FuzzyThreshold {
		c.Kind = KindFuzzyExisting
		c.Score = score
		c.MatchedFields = matched
		snap := snapshotOf(r.existing[best])
		c.Existing = &snap
	}
	return c
}

// field weights for the fuzzy score; the score is normalized by the weights
// of the fields present on both sides so a missing phone does not drag a
// strong name+email match under the threshold.
const (
	weightName  = 0.4
	weightEmail = 0.4
	weightPhone = 0.2
)

func (r *Resolver) bestFuzzy(row normalize.NormalizedRow) (int, float64, []string) {
	name := strings.ToLower(row.Fields[mapping.FieldFullName])
	email := strings.ToLower(row.Fields[mapping.FieldEmail])
	phone := normalizePhone(row.Fields[mapping.FieldPhone])

	bestIdx, bestScore := -1, 0.0
	var bestMatched []string
	for i, l := range r.existing {
		score, matched := fuzzyScore(name, email, phone, l)
		if score > bestScore {
			bestIdx, bestScore, bestMatched = i, score, matched
		}
	}
	return bestIdx, bestScore, bestMatched
}

func fuzzyScore(name, email, phone string, l lead.Lead) (float64, []string) {
	var total, weights float64
	var matched []string

	record := func(field string, sim, weight float64) {
		total += sim * weight
		weights += weight
		if sim >= fieldMatchThreshold {
			matched = append(matched, field)
		}
	}

	if name != "" && l.FullName() != "" {
		record("full_name", similarity(name, strings.ToLower(l.FullName())), weightName)
	}
	if email != "" && l.Email() != "" {
		record("email", similarity(email, strings.ToLower(l.Email())), weightEmail)
	}
	if lp := normalizePhone(l.Phone()); phone != "" && lp != "" {
		record("phone", similarity(phone, lp), weightPhone)
	}

	if weights == 0 {
		return 0, nil
	}
	return total / weights, matched
}

// similarity maps Levenshtein distance onto [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// normalizePhone strips formatting so "+1 (555) 010-0100" and "15550100100"
// compare equal.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
