// Package fetcher reads demand and facility tables from XLSX and CSV files,
// detects their columns and coerces them into model values.
package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// utf8BOM is stripped from the first header cell; Excel writes it on CSV export.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads every record from r. Rows may have differing field counts.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: parse")
	}
	return records, nil
}
