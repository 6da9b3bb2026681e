package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() Bundle {
	return Bundle{
		Mappings: map[string]CanonicalField{
			"Name":  FieldFullName,
			"Email": FieldEmail,
		},
	}
}

func TestValidate_AcceptsMinimalBundle(t *testing.T) {
	require.NoError(t, Validate(validBundle()))
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	err := Validate(Bundle{
		Mappings: map[string]CanonicalField{"Phone": FieldPhone},
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []CanonicalField{FieldFullName, FieldEmail}, vErr.MissingFields)
	assert.Empty(t, vErr.Conflicts)
}

func TestValidate_ColumnMergedAndDirectlyMapped(t *testing.T) {
	b := validBundle()
	b.Mappings["First"] = FieldNotes
	b.MergeRules = []MergeRule{
		{Target: FieldFullName, Sources: []string{"First", "Last"}, Separator: " "},
	}

	err := Validate(b)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Conflicts, 1)
	assert.Equal(t, "First", vErr.Conflicts[0].Column)
}

func TestValidate_ColumnInTwoMergeRules(t *testing.T) {
	b := validBundle()
	b.MergeRules = []MergeRule{
		{Target: FieldNotes, Sources: []string{"Extra"}, Separator: " "},
		{Target: FieldCompany, Sources: []string{"Extra"}, Separator: " "},
	}

	err := Validate(b)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Conflicts, 1)
	assert.Equal(t, "Extra", vErr.Conflicts[0].Column)
}

func TestValidate_ColumnMappedAndIgnored(t *testing.T) {
	b := validBundle()
	b.IgnoredColumns = []string{"Email"}

	err := Validate(b)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Conflicts, 1)
	assert.Equal(t, "Email", vErr.Conflicts[0].Column)
}

func TestValidate_DuplicateDirectTarget(t *testing.T) {
	b := validBundle()
	b.Mappings["Work Email"] = FieldEmail

	err := Validate(b)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Conflicts, 1)
	// keys are walked in sorted order, so Work Email loses to Email
	assert.Equal(t, "Work Email", vErr.Conflicts[0].Column)
}

func TestValidate_UnknownTargetField(t *testing.T) {
	b := validBundle()
	b.Mappings["Favorite Color"] = CanonicalField("favorite_color")

	err := Validate(b)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Conflicts, 1)
	assert.Equal(t, "Favorite Color", vErr.Conflicts[0].Column)
}

func TestValidateShape_SkipsRequiredCoverage(t *testing.T) {
	assert.NoError(t, ValidateShape(Bundle{
		Mappings: map[string]CanonicalField{"Phone": FieldPhone},
	}))
}

func TestMergeRule_SkipsEmptySources(t *testing.T) {
	rule := MergeRule{Target: FieldFullName, Sources: []string{"First", "Middle", "Last"}, Separator: " "}

	got := rule.Apply(map[string]string{"First": "Ada", "Middle": "", "Last": "Lovelace"})

	assert.Equal(t, "Ada Lovelace", got)
}

func TestBundle_ExtractRow(t *testing.T) {
	b := Bundle{
		Mappings: map[string]CanonicalField{
			"First":   FieldNotes, // consumed by the merge rule, must not apply
			"Email":   FieldEmail,
			"Skipped": FieldCompany,
		},
		MergeRules: []MergeRule{
			{Target: FieldFullName, Sources: []string{"First", "Last"}, Separator: " "},
		},
		IgnoredColumns: []string{"Skipped"},
	}

	got := b.ExtractRow(map[string]string{
		"First":   "Ada",
		"Last":    "Lovelace",
		"Email":   "ada@example.com",
		"Skipped": "ACME",
	})

	assert.Equal(t, map[CanonicalField]string{
		FieldFullName: "Ada Lovelace",
		FieldEmail:    "ada@example.com",
	}, got)
}
