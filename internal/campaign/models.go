// Package campaign plans and executes exhaustive verification campaigns: a
// byte space is partitioned into chunks, every candidate in every chunk is
// enumerated against the validator, and each chunk's verdict lands in the
// run ledger as exactly one record.
package campaign

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"veriseq/internal/ledger"
	"veriseq/internal/partition"
)

// Expectation says what the validator must do with every candidate in a
// space.
type Expectation string

const (
	// ExpectAccept requires the chain to accept every candidate.
	ExpectAccept Expectation = "accept"
	// ExpectReject requires the chain to reject every candidate.
	ExpectReject Expectation = "reject"
	// ExpectOracleAgreement requires the chain's verdict to match the
	// independent reference oracle on every candidate.
	ExpectOracleAgreement Expectation = "oracle_agreement"
)

func (e Expectation) Valid() bool {
	switch e {
	case ExpectAccept, ExpectReject, ExpectOracleAgreement:
		return true
	}
	return false
}

// Space is a named, fixed-length byte space with an expectation attached.
// ChunkCounts lists the partition granularities a campaign may pick from;
// the first entry is the default.
type Space struct {
	Name        string
	Shape       partition.Shape
	Expect      Expectation
	ChunkCounts []int
}

// Size returns the number of candidates in the space.
func (s Space) Size() uint64 { return s.Shape.Size() }

// DefaultChunks returns the space's default partition granularity.
func (s Space) DefaultChunks() int {
	if len(s.ChunkCounts) == 0 {
		return 1
	}
	return s.ChunkCounts[0]
}

// Harness is one runnable chunk of a space. Its name is stable across runs,
// which is what makes ledger-based resume possible.
type Harness struct {
	Name   string
	Space  string
	Expect Expectation
	Chunk  partition.Chunk
	// Of is the total number of chunks in the plan the harness came from.
	Of int
}

// HarnessName builds the canonical harness name for chunk i of n.
func HarnessName(space string, n, i int) string {
	return fmt.Sprintf("verify_%s_%dchunks_%d", space, n, i)
}

// Bound returns the number of candidates the harness enumerates.
func (h Harness) Bound() uint64 { return h.Chunk.Shape.Size() }

// Outcome is the result of running one harness to completion.
type Outcome struct {
	Harness  Harness
	Status   ledger.Status
	Seconds  float64
	Explored uint64
	// Counterexample holds the first candidate that contradicted the
	// expectation; nil unless Status is FAILED.
	Counterexample []byte
	Message        string
}

// Record converts the outcome to its ledger form.
func (o Outcome) Record(at time.Time) ledger.Record {
	return ledger.Record{
		Timestamp: at,
		Module:    o.Harness.Space,
		Harness:   o.Harness.Name,
		Status:    o.Status,
		Seconds:   o.Seconds,
		Bound:     o.Harness.Bound(),
		Message:   o.Message,
	}
}

// State tracks a campaign through its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Campaign is one verification run over a space: a partition granularity,
// the set of harnesses it produced, and the aggregate result.
type Campaign struct {
	ID         uuid.UUID      `json:"id"`
	Space      string         `json:"space"`
	Chunks     int            `json:"chunks"`
	Resume     bool           `json:"resume"`
	State      State          `json:"state"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Skipped    int            `json:"skipped"`
	Summary    ledger.Summary `json:"summary"`
	Error      string         `json:"error,omitempty"`
}
