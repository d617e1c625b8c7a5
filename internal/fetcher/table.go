package fetcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable splits raw records into header and data rows. Header cells are
// trimmed; fully blank rows are dropped.
func NewTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("fetcher: table has no header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Header: header}
	for _, row := range records[1:] {
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

type tableFormat int

const (
	formatXLSX tableFormat = iota
	formatCSV
)

// formatOf picks the parser from a file name's extension.
func formatOf(name string) (tableFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".csv":
		return formatCSV, nil
	case ".xls":
		return 0, eris.Errorf("fetcher: legacy .xls workbooks are not supported, re-save %s as .xlsx", filepath.Base(name))
	default:
		return 0, eris.Errorf("fetcher: unsupported file type %q", ext)
	}
}

// ReadTable loads a table from an .xlsx or .csv file, choosing the parser by
// extension.
func ReadTable(path string) (*Table, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case formatXLSX:
		records, err = ReadXLSX(path, XLSXOptions{})
	case formatCSV:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrap(openErr, "fetcher: open csv")
		}
		defer f.Close()
		records, err = ReadCSV(f)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", filepath.Base(path))
	}
	return NewTable(records)
}

// ParseTable parses an uploaded file held in memory. name only selects the
// parser.
func ParseTable(name string, data []byte) (*Table, error) {
	format, err := formatOf(name)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case formatXLSX:
		records, err = ReadXLSXBytes(data, XLSXOptions{})
	case formatCSV:
		records, err = ReadCSV(bytes.NewReader(data))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", filepath.Base(name))
	}
	return NewTable(records)
}

// FindColumn returns the index of the first candidate present in header, or
// -1. Exact matches are tried first in candidate order, then case-insensitive
// matches.
func FindColumn(header []string, candidates []string) int {
	for _, c := range candidates {
		for i, h := range header {
			if strings.TrimSpace(h) == c {
				return i
			}
		}
	}

	fold := cases.Fold()
	folded := make(map[string]int, len(header))
	for i, h := range header {
		k := fold.String(strings.TrimSpace(h))
		if _, ok := folded[k]; !ok {
			folded[k] = i
		}
	}
	for _, c := range candidates {
		if i, ok := folded[fold.String(c)]; ok {
			return i
		}
	}
	return -1
}

// cell safely retrieves a trimmed value from a row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
