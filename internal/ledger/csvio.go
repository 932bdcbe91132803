package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// The CSV layout is a fixed seven-column contract shared with external
// tooling. Column order is part of the contract and never changes.
// Timestamps are ISO-8601 with offset; records are written in UTC.
const timestampLayout = time.RFC3339

// Header returns the CSV header row.
func Header() []string {
	return []string{
		"Timestamp",
		"Module",
		"Harness",
		"Status",
		"Time_Seconds",
		"Exploration_Bound",
		"Error_Message",
	}
}

func (r Record) row() []string {
	return []string{
		r.Timestamp.UTC().Format(timestampLayout),
		r.Module,
		r.Harness,
		string(r.Status),
		strconv.FormatFloat(r.Seconds, 'f', 2, 64),
		strconv.FormatUint(r.Bound, 10),
		r.Message,
	}
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(Header()) {
		return Record{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Header()))
	}
	ts, err := time.Parse(timestampLayout, row[0])
	if err != nil {
		return Record{}, fmt.Errorf("parse timestamp: %w", err)
	}
	seconds, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return Record{}, fmt.Errorf("parse seconds: %w", err)
	}
	bound, err := strconv.ParseUint(row[5], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parse bound: %w", err)
	}
	rec := Record{
		Timestamp: ts.UTC(),
		Module:    row[1],
		Harness:   row[2],
		Status:    Status(row[3]),
		Seconds:   seconds,
		Bound:     bound,
		Message:   row[6],
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// WriteCSV writes a header followed by all records.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a ledger file, tolerating a missing header so that files
// produced by plain appends still load.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header())

	var out []Record
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if row[0] == "Timestamp" {
				continue
			}
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
}

// appendCSV appends one record to the file at path, writing the header
// first when the file is new or empty.
func appendCSV(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(Header()); err != nil {
			return err
		}
	}
	if err := cw.Write(rec.row()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV replays a prior ledger CSV into a store, so campaigns resumed
// against a fresh store still skip harnesses that succeeded before. Returns
// the number of records imported.
func ImportCSV(ctx context.Context, store Store, r io.Reader) (int, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	for i, rec := range records {
		if err := store.Append(ctx, rec); err != nil {
			return i, fmt.Errorf("import record %d: %w", i, err)
		}
	}
	return len(records), nil
}
