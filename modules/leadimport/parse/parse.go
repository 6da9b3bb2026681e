package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type, expected .csv or .xlsx")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrEmptyFile       = errors.New("file contains no data rows")
)

// sampleRowCount is how many leading data rows are kept for column-mapping
// hints and the upload preview.
const sampleRowCount = 5

// ParsedFile is the normalized view of an uploaded spreadsheet. Columns keeps
// the source header order; fully empty columns are dropped and recorded in
// RemovedColumns so the client can explain why they are absent from mapping.
type ParsedFile struct {
	FileName       string
	Columns        []mapping.DetectedColumn
	RemovedColumns []string
	Rows           []normalize.RawRow
}

// SampleRows returns the first data rows for the upload response preview.
func (f ParsedFile) SampleRows() []normalize.RawRow {
	if len(f.Rows) <= sampleRowCount {
		return f.Rows
	}
	return f.Rows[:sampleRowCount]
}

// File parses an uploaded CSV or XLSX file. maxSize is enforced here again
// even though the HTTP layer caps the request body; a zero maxSize disables
// the check.
func File(fileName string, data []byte, maxSize int64) (ParsedFile, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return ParsedFile{}, ErrFileTooLarge
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx":
		records, err = readXLSX(data)
	default:
		return ParsedFile{}, ErrUnsupportedType
	}
	if err != nil {
		return ParsedFile{}, err
	}
	return fromRecords(fileName, records)
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse csv")
		}
		// the csv reader swallows empty lines; pad them back so record
		// index keeps tracking the source line
		line, _ := r.FieldPos(0)
		for len(records) < line-1 {
			records = append(records, nil)
		}
		records = append(records, record)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	// the wizard reads the first sheet only
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read xlsx rows")
	}
	return rows, nil
}

func fromRecords(fileName string, records [][]string) (ParsedFile, error) {
	rows := contentRows(records)
	if len(rows) < 2 {
		return ParsedFile{}, ErrEmptyFile
	}

	headers := dedupeHeaders(rows[0].record)
	dataRows := rows[1:]

	dataRecords := make([][]string, len(dataRows))
	for i, src := range dataRows {
		dataRecords[i] = src.record
	}

	kept, removed := partitionColumns(headers, dataRecords)

	parsed := ParsedFile{
		FileName:       fileName,
		RemovedColumns: removed,
	}
	for _, col := range kept {
		parsed.Columns = append(parsed.Columns, mapping.DetectedColumn{
			Name:    col.name,
			Samples: col.samples(dataRecords, sampleRowCount),
		})
	}
	for _, src := range dataRows {
		values := make(map[string]string, len(kept))
		for _, col := range kept {
			if v := col.value(src.record); v != "" {
				values[col.name] = v
			}
		}
		// row numbers come from the source file, so error messages still
		// line up when blank rows are skipped
		parsed.Rows = append(parsed.Rows, normalize.RawRow{
			Number: src.number,
			Values: values,
		})
	}
	return parsed, nil
}

type column struct {
	name  string
	index int
}

func (c column) value(record []string) string {
	if c.index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[c.index])
}

func (c column) samples(rows [][]string, limit int) []string {
	var out []string
	for _, row := range rows {
		if len(out) == limit {
			break
		}
		if v := c.value(row); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// partitionColumns splits headers into columns that carry at least one value
// and columns that are empty in every data row.
func partitionColumns(headers []string, rows [][]string) ([]column, []string) {
	var kept []column
	var removed []string
	for i, name := range headers {
		if name == "" {
			continue
		}
		col := column{name: name, index: i}
		empty := true
		for _, row := range rows {
			if col.value(row) != "" {
				empty = false
				break
			}
		}
		if empty {
			removed = append(removed, name)
			continue
		}
		kept = append(kept, col)
	}
	return kept, removed
}

// sourceRow keeps a record tied to its 1-based line in the uploaded file.
type sourceRow struct {
	number int
	record []string
}

// contentRows drops rows with no values while preserving source numbering.
func contentRows(records [][]string) []sourceRow {
	var out []sourceRow
	for i, record := range records {
		blank := true
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, sourceRow{number: i + 1, record: record})
		}
	}
	return out
}

// dedupeHeaders trims header names and disambiguates repeats so they can key
// the row value maps. "Email", "Email" becomes "Email", "Email (2)".
func dedupeHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			out[i] = ""
			continue
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		out[i] = name
	}
	return out
}
