// csvio/csvio.go
// Package csvio reads and writes the tabular import/export formats. Imports
// are header-mapped: the first row names the columns, fields are trimmed,
// unrecognized columns are ignored and blank lines are skipped, matching the
// files the previous system produced.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one parsed record, keyed by header name.
type Row map[string]string

// Get returns the trimmed value for a column, or "" when the column is
// absent or the row was short.
func (r Row) Get(column string) string {
	return r[column]
}

// ReadRows parses header-mapped CSV from r. Rows shorter than the header are
// padded with empty fields; longer rows have the extras dropped.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		empty := true
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			var value string
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			if value != "" {
				empty = false
			}
			row[name] = value
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write emits a fixed-header CSV document: header first, then one record per
// row in the given column order. encoding/csv applies the double-quote
// escaping the export contract requires.
func Write(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
