package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
)

func row(num int, name, email, phone string) normalize.NormalizedRow {
	fields := map[mapping.CanonicalField]string{}
	if name != "" {
		fields[mapping.FieldFullName] = name
	}
	if email != "" {
		fields[mapping.FieldEmail] = email
	}
	if phone != "" {
		fields[mapping.FieldPhone] = phone
	}
	return normalize.NormalizedRow{Number: num, Fields: fields}
}

func TestClassify_AllUnique(t *testing.T) {
	r := NewResolver(nil)

	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com", ""),
		row(3, "Grace Hopper", "grace@example.com", ""),
	})

	assert.Equal(t, 2, analysis.UniqueCount)
	assert.False(t, analysis.NeedsResolution())
}

func TestClassify_InFileDuplicateByEmail(t *testing.T) {
	r := NewResolver(nil)

	// rows 2 and 3 share an email, case-insensitively
	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com", ""),
		row(3, "A. Lovelace", "ADA@example.com", ""),
		row(4, "Grace Hopper", "grace@example.com", ""),
	})

	assert.Equal(t, 1, analysis.InFileCount)
	assert.Zero(t, analysis.ExactCount)

	dup, ok := analysis.ByRow(3)
	require.True(t, ok)
	assert.Equal(t, KindInFile, dup.Kind)
	assert.Equal(t, 2, dup.FirstRow)
}

func TestClassify_InFileDuplicateSurvivesReordering(t *testing.T) {
	r := NewResolver(nil)
	rows := []normalize.NormalizedRow{
		row(4, "Grace Hopper", "grace@example.com", ""),
		row(3, "A. Lovelace", "ada@example.com", ""),
		row(2, "Ada Lovelace", "ada@example.com", ""),
	}

	analysis := r.Classify(rows)

	// the later row number is the duplicate no matter the input order
	dup, ok := analysis.ByRow(3)
	require.True(t, ok)
	assert.Equal(t, KindInFile, dup.Kind)
	assert.Equal(t, 2, dup.FirstRow)

	first, ok := analysis.ByRow(2)
	require.True(t, ok)
	assert.Equal(t, KindUnique, first.Kind)
}

func TestClassify_ExactExistingByEmail(t *testing.T) {
	existing := lead.New("Ada Lovelace", "ada@example.com")
	r := NewResolver([]lead.Lead{existing})

	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Ada L", "ADA@EXAMPLE.COM", ""),
	})

	require.Equal(t, 1, analysis.ExactCount)
	c := analysis.Classifications[0]
	assert.Equal(t, KindExactExisting, c.Kind)
	assert.Equal(t, MatchEmail, c.MatchType)
	require.NotNil(t, c.Existing)
	assert.Equal(t, existing.ID().String(), c.Existing.ID)
}

func TestClassify_ExactExistingByPhoneWhenEmailAbsent(t *testing.T) {
	existing := lead.New("Ada Lovelace", "ada@example.com", lead.WithPhone("+1 (555) 010-0100"))
	r := NewResolver([]lead.Lead{existing})

	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Someone Else", "", "15550100100"),
	})

	require.Equal(t, 1, analysis.ExactCount)
	c := analysis.Classifications[0]
	assert.Equal(t, MatchPhone, c.MatchType)
}

func TestClassify_PhoneIgnoredWhenEmailPresent(t *testing.T) {
	existing := lead.New("Ada Lovelace", "ada@example.com", lead.WithPhone("+1 (555) 010-0100"))
	r := NewResolver([]lead.Lead{existing})

	// the email identifies a different person, so the shared phone is not
	// an exact match
	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Someone Else", "other@example.com", "15550100100"),
	})

	assert.Zero(t, analysis.ExactCount)
	assert.NotEqual(t, KindExactExisting, analysis.Classifications[0].Kind)
}

func TestClassify_FuzzyExistingAboveThreshold(t *testing.T) {
	existing := lead.New("Jonathan Smith", "jonathan.smith@acme.com")
	r := NewResolver([]lead.Lead{existing})

	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Jonathon Smith", "jonathan.smith@acme.co", ""),
	})

	require.Equal(t, 1, analysis.FuzzyCount)
	c := analysis.Classifications[0]
	assert.Equal(t, KindFuzzyExisting, c.Kind)
	assert.GreaterOrEqual(t, c.Score, FuzzyThreshold)
	assert.Contains(t, c.MatchedFields, "full_name")
	assert.Contains(t, c.MatchedFields, "email")
}

func TestClassify_DissimilarRowStaysUnique(t *testing.T) {
	existing := lead.New("Jonathan Smith", "jonathan.smith@acme.com")
	r := NewResolver([]lead.Lead{existing})

	analysis := r.Classify([]normalize.NormalizedRow{
		row(2, "Yuki Tanaka", "yuki@hokkaido.example.jp", ""),
	})

	assert.Equal(t, 1, analysis.UniqueCount)
	assert.Zero(t, analysis.FuzzyCount)
}

func TestClassify_DeterministicAndIdempotent(t *testing.T) {
	existing := []lead.Lead{
		lead.New("Ada Lovelace", "ada@example.com"),
		lead.New("Grace Hopper", "grace@example.com", lead.WithPhone("555-010-0300")),
	}
	rows := []normalize.NormalizedRow{
		row(2, "Ada Lovelace", "ada@example.com", ""),
		row(3, "Grace H", "grace@example.com", ""),
		row(4, "New Person", "new@example.com", ""),
		row(5, "New Person", "NEW@example.com", ""),
	}

	first := NewResolver(existing).Classify(rows)
	second := NewResolver(existing).Classify(rows)

	assert.Equal(t, first, second)

	// ordered by ascending row number
	for i := 1; i < len(first.Classifications); i++ {
		assert.Greater(t, first.Classifications[i].Row, first.Classifications[i-1].Row)
	}
}
