// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Comma is the delimiter of the persisted cache tables.
	Comma = ','
	// Tab is the delimiter of the UniProt tsv responses.
	Tab = '\t'
)

// ErrMissingColumn is returned by Index when a required column is not in the
// header.
var ErrMissingColumn = errors.New("missing column")

// Table is a decoded delimited document. Header holds the first row, Records
// the remaining ones.
type Table struct {
	Header  []string
	Records [][]string
}

// Decode reads a delimited document. An empty document decodes to an empty
// Table. Rows shorter than the header are padded with empty cells so callers
// can index them blindly.
func Decode(r io.Reader, comma rune) (Table, error) {
	reader := stdcsv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to decode table: %w", err)
	}

	if len(all) == 0 {
		return Table{}, nil
	}

	t := Table{Header: trimHeader(all[0])}
	for _, rec := range all[1:] {
		// Blank lines are skipped by encoding/csv, but a lone delimiter-free
		// empty cell still shows up as [""].
		if len(rec) == 1 && rec[0] == "" && len(t.Header) > 1 {
			continue
		}
		for len(rec) < len(t.Header) {
			rec = append(rec, "")
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(b []byte, comma rune) (Table, error) {
	return Decode(bytes.NewReader(b), comma)
}

// Encode writes header and records as a comma delimited document.
func Encode(w io.Writer, header []string, records [][]string) error {
	writer := stdcsv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, header, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Index returns the position of each named column in header. Matching is
// exact after trimming surrounding whitespace.
func Index(header []string, columns ...string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := positions[h]; !seen {
			positions[h] = i
		}
	}

	idx := make(map[string]int, len(columns))
	for _, c := range columns {
		i, ok := positions[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
		idx[c] = i
	}

	return idx, nil
}

// Cell returns rec[i], or "" when i is out of range.
func Cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// trimHeader strips surrounding whitespace and a UTF-8 BOM from the header
// cells. Spreadsheet round-trips like to leave both behind.
func trimHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}
