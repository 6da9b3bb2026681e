package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
)

func directBundle() mapping.Bundle {
	return mapping.Bundle{
		Mappings: map[string]mapping.CanonicalField{
			"Name":   mapping.FieldFullName,
			"Email":  mapping.FieldEmail,
			"Phone":  mapping.FieldPhone,
			"Source": mapping.FieldSource,
			"Status": mapping.FieldStatus,
		},
	}
}

func TestRun_ValidRow(t *testing.T) {
	result := Run([]RawRow{
		{Number: 2, Values: map[string]string{
			"Name":  "Ada Lovelace",
			"Email": "Ada@Example.com",
			"Phone": "+1 555 010 0100",
		}},
	}, directBundle())

	require.Equal(t, 1, result.TotalRows)
	require.Equal(t, 1, result.ValidRows)
	assert.Zero(t, result.InvalidCount)
	assert.Equal(t, "ada@example.com", result.Rows[0].Fields[mapping.FieldEmail])
}

func TestRun_InvalidEmailMarksRow(t *testing.T) {
	result := Run([]RawRow{
		{Number: 2, Values: map[string]string{"Name": "Ada", "Email": "not-an-email"}},
	}, directBundle())

	require.Equal(t, 1, result.InvalidCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "email", result.Errors[0].Field)
	assert.Equal(t, "validation failed: email", result.Errors[0].Reason)
}

func TestRun_RequiredFieldMissing(t *testing.T) {
	result := Run([]RawRow{
		{Number: 3, Values: map[string]string{"Name": "Ada"}},
	}, directBundle())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Field)
	assert.Equal(t, "required field missing", result.Errors[0].Reason)
}

func TestRun_InvalidEnumValues(t *testing.T) {
	result := Run([]RawRow{
		{Number: 2, Values: map[string]string{
			"Name":   "Ada",
			"Email":  "ada@example.com",
			"Source": "carrier_pigeon",
			"Status": "vibing",
		}},
	}, directBundle())

	require.Len(t, result.Errors, 2)
	reasons := []string{result.Errors[0].Reason, result.Errors[1].Reason}
	assert.Contains(t, reasons, "invalid value: carrier_pigeon")
	assert.Contains(t, reasons, "invalid value: vibing")
}

func TestRun_DropsRowsWithNoMappedValues(t *testing.T) {
	result := Run([]RawRow{
		{Number: 2, Values: map[string]string{"Name": "Ada", "Email": "ada@example.com"}},
		{Number: 3, Values: map[string]string{"Unmapped": "whatever"}},
		{Number: 4, Values: map[string]string{}},
	}, directBundle())

	require.Equal(t, 1, result.TotalRows)
	assert.Equal(t, 2, result.Rows[0].Number)
}

func TestRun_CountInvariant(t *testing.T) {
	rows := make([]RawRow, 0, 20)
	for i := 0; i < 20; i++ {
		values := map[string]string{"Name": "Lead", "Email": fmt.Sprintf("lead%d@example.com", i)}
		if i%3 == 0 {
			values["Email"] = "broken"
		}
		rows = append(rows, RawRow{Number: i + 2, Values: values})
	}

	result := Run(rows, directBundle())

	assert.Equal(t, result.TotalRows, result.ValidRows+result.InvalidCount)
	assert.Equal(t, 20, result.TotalRows)
}

func TestResult_SampleIsBounded(t *testing.T) {
	rows := make([]RawRow, 0, SampleSize+5)
	for i := 0; i < SampleSize+5; i++ {
		rows = append(rows, RawRow{
			Number: i + 2,
			Values: map[string]string{"Name": "Lead", "Email": fmt.Sprintf("lead%d@example.com", i)},
		})
	}

	result := Run(rows, directBundle())

	assert.Len(t, result.Sample(), SampleSize)
}

func TestRun_PhoneCharsetValidation(t *testing.T) {
	result := Run([]RawRow{
		{Number: 2, Values: map[string]string{
			"Name":  "Ada",
			"Email": "ada@example.com",
			"Phone": "call me maybe",
		}},
	}, directBundle())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "phone", result.Errors[0].Field)
	assert.Equal(t, "validation failed: phone", result.Errors[0].Reason)
}
