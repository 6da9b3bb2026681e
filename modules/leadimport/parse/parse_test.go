package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFile_CSV(t *testing.T) {
	data := []byte("Full Name,Email,Phone\n" +
		"Ada Lovelace,ada@example.com,555-0100\n" +
		"Grace Hopper,grace@example.com,\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	assert.Equal(t, "leads.csv", parsed.FileName)

	names := make([]string, 0, len(parsed.Columns))
	for _, c := range parsed.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Full Name", "Email", "Phone"}, names)

	require.Len(t, parsed.Rows, 2)
	// row 1 is the header row
	assert.Equal(t, 2, parsed.Rows[0].Number)
	assert.Equal(t, 3, parsed.Rows[1].Number)
	assert.Equal(t, "ada@example.com", parsed.Rows[0].Values["Email"])
	// empty cells are omitted from the row map
	_, ok := parsed.Rows[1].Values["Phone"]
	assert.False(t, ok)
}

func TestFile_ColumnSamples(t *testing.T) {
	data := []byte("Email\n" +
		"a@example.com\nb@example.com\nc@example.com\nd@example.com\ne@example.com\nf@example.com\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	require.Len(t, parsed.Columns, 1)
	assert.Len(t, parsed.Columns[0].Samples, sampleRowCount)
	assert.Equal(t, "a@example.com", parsed.Columns[0].Samples[0])
	assert.Len(t, parsed.SampleRows(), sampleRowCount)
}

func TestFile_RemovesEmptyColumns(t *testing.T) {
	data := []byte("Full Name,Unused,Email\n" +
		"Ada Lovelace,,ada@example.com\n" +
		"Grace Hopper,,grace@example.com\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Unused"}, parsed.RemovedColumns)
	for _, c := range parsed.Columns {
		assert.NotEqual(t, "Unused", c.Name)
	}
}

func TestFile_DisambiguatesDuplicateHeaders(t *testing.T) {
	data := []byte("Email,Email\n" +
		"work@example.com,home@example.com\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	require.Len(t, parsed.Columns, 2)
	assert.Equal(t, "Email", parsed.Columns[0].Name)
	assert.Equal(t, "Email (2)", parsed.Columns[1].Name)
	assert.Equal(t, "work@example.com", parsed.Rows[0].Values["Email"])
	assert.Equal(t, "home@example.com", parsed.Rows[0].Values["Email (2)"])
}

func TestFile_DropsBlankRowsKeepingSourceNumbers(t *testing.T) {
	data := []byte("Full Name,Email\n" +
		"Ada Lovelace,ada@example.com\n" +
		"\n" +
		",\n" +
		"Grace Hopper,grace@example.com\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, 2, parsed.Rows[0].Number)
	// blank lines 3 and 4 are dropped but still counted
	assert.Equal(t, 5, parsed.Rows[1].Number)
	assert.Equal(t, "grace@example.com", parsed.Rows[1].Values["Email"])
}

func TestFile_RaggedRows(t *testing.T) {
	data := []byte("Full Name,Email,Phone\n" +
		"Ada Lovelace,ada@example.com\n" +
		"Grace Hopper,grace@example.com,555-0200,extra\n")

	parsed, err := File("leads.csv", data, 0)

	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	_, ok := parsed.Rows[0].Values["Phone"]
	assert.False(t, ok, "short record has no value for trailing columns")
	assert.Equal(t, "555-0200", parsed.Rows[1].Values["Phone"])
}

func TestFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Full Name", "Email"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Ada Lovelace", "ada@example.com"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"Grace Hopper", "grace@example.com"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	parsed, err := File("leads.xlsx", buf.Bytes(), 0)

	require.NoError(t, err)
	require.Len(t, parsed.Columns, 2)
	assert.Equal(t, "Full Name", parsed.Columns[0].Name)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "grace@example.com", parsed.Rows[1].Values["Email"])
}

func TestFile_UnsupportedType(t *testing.T) {
	_, err := File("leads.pdf", []byte("whatever"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFile_TooLarge(t *testing.T) {
	_, err := File("leads.csv", []byte("Email\na@example.com\n"), 5)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFile_Empty(t *testing.T) {
	_, err := File("leads.csv", []byte("Full Name,Email\n"), 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = File("leads.csv", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
