// Package ledger records the outcome of every verification harness run. The
// ledger is append-only: a harness run produces exactly one record on
// completion and none on cancellation, and records are never updated or
// deleted. Resuming a campaign means reading the ledger back and skipping
// the harnesses that already succeeded.
package ledger

import (
	"time"

	dErrors "veriseq/pkg/domain-errors"
)

// Status classifies a completed harness run.
type Status string

const (
	// StatusSuccess means the harness enumerated its whole chunk and every
	// candidate behaved as expected.
	StatusSuccess Status = "SUCCESS"
	// StatusFailed means at least one candidate contradicted the harness
	// expectation. The record's message names the first counterexample.
	StatusFailed Status = "FAILED"
	// StatusTimeout means the deadline elapsed before the chunk was
	// exhausted.
	StatusTimeout Status = "TIMEOUT"
	// StatusError means the harness could not run to a verdict, for example
	// because its chunk exceeded the exploration bound.
	StatusError Status = "ERROR"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimeout, StatusError:
		return true
	}
	return false
}

// Record is one ledger entry. The field set and order mirror the CSV
// contract exactly; see Header in csvio.go.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Harness   string    `json:"harness"`
	Status    Status    `json:"status"`
	Seconds   float64   `json:"time_seconds"`
	// Bound is the exploration bound the harness ran under: the number of
	// candidates its chunk contains.
	Bound   uint64 `json:"exploration_bound"`
	Message string `json:"error_message,omitempty"`
}

// Validate checks the fields every store requires before an append.
func (r Record) Validate() error {
	if r.Module == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "record requires a module")
	}
	if r.Harness == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "record requires a harness")
	}
	if !r.Status.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", r.Status)
	}
	if r.Timestamp.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "record requires a timestamp")
	}
	return nil
}

// Filter selects ledger records. Zero-valued fields match everything.
type Filter struct {
	Module  string
	Harness string
	Status  Status
}

func (f Filter) matches(r Record) bool {
	if f.Module != "" && r.Module != f.Module {
		return false
	}
	if f.Harness != "" && r.Harness != f.Harness {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Summary aggregates a set of records by status.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Seconds  float64        `json:"seconds"`
}

// Summarize folds records into a Summary.
func Summarize(records []Record) Summary {
	s := Summary{ByStatus: make(map[Status]int)}
	for _, r := range records {
		s.Total++
		s.ByStatus[r.Status]++
		s.Seconds += r.Seconds
	}
	return s
}
