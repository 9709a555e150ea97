// Package export writes and reads comparison tables of records.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/susdigest/internal/report"
)

// Format is a table encoding.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for names other than csv, json and xlsx.
var ErrUnknownFormat = errors.New("unknown table format")

// ParseFormat accepts a format name or a filename with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}
	switch Format(s) {
	case CSV, JSON, XLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []report.Record) error {
	switch format {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case XLSX:
		return WriteXLSX(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteCSV writes one header row in column order and one row per record.
// Null values are empty cells.
func WriteCSV(w io.Writer, records []report.Record) error {
	cw := csv.NewWriter(w)
	cols := report.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = r.Format(c)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %q: %w", r.CompanyName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of objects with every field present. Null values
// are explicit nulls.
func WriteJSON(w io.Writer, records []report.Record) error {
	if records == nil {
		records = []report.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ReadCSV parses a table written by WriteCSV. Columns are matched by header
// name, so reordered or partial tables load too.
func ReadCSV(r io.Reader) ([]report.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var out []report.Record
	for n, row := range rows[1:] {
		var rec report.Record
		for i, name := range header {
			if i >= len(row) {
				break
			}
			name = strings.TrimSpace(name)
			if _, ok := report.KindOf(name); !ok {
				continue
			}
			if err := rec.SetString(name, row[i]); err != nil {
				return nil, fmt.Errorf("row %d: %w", n+2, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadJSON parses a table written by WriteJSON.
func ReadJSON(r io.Reader) ([]report.Record, error) {
	var out []report.Record
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return out, nil
}

// Read decodes a CSV or JSON table.
func Read(r io.Reader, format Format) ([]report.Record, error) {
	switch format {
	case CSV:
		return ReadCSV(r)
	case JSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: cannot read %q", ErrUnknownFormat, format)
}

// Upsert replaces the row whose company name matches rec (case-insensitive)
// or appends rec. The input slice is not modified.
func Upsert(records []report.Record, rec report.Record) []report.Record {
	out := make([]report.Record, len(records), len(records)+1)
	copy(out, records)
	for i := range out {
		if strings.EqualFold(out[i].CompanyName, rec.CompanyName) {
			out[i] = rec
			return out
		}
	}
	return append(out, rec)
}
