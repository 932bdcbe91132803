package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veriseq/internal/ledger"
	"veriseq/internal/partition"
	"veriseq/internal/validator"
	"veriseq/internal/validator/reference"
)

// DefaultBound caps how many candidates a single harness may enumerate.
// A chunk bigger than the bound yields an ERROR record instead of running.
const DefaultBound = 1 << 26

// ctx is polled every checkInterval candidates so timeouts and cancellation
// land promptly without a per-candidate branch cost.
const checkInterval = 4096

// Runner executes one harness at a time: it enumerates every candidate in
// the harness chunk and checks the chain's verdict against the harness
// expectation. The reference oracle supplies expected verdicts for
// oracle-agreement spaces.
type Runner struct {
	validator *validator.Validator
	oracle    func([]byte) bool
	bound     uint64
}

type RunnerOption func(*Runner)

// WithBound overrides the per-harness exploration bound.
func WithBound(n uint64) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.bound = n
		}
	}
}

// WithValidator overrides the chain under test.
func WithValidator(v *validator.Validator) RunnerOption {
	return func(r *Runner) {
		if v != nil {
			r.validator = v
		}
	}
}

// WithOracle overrides the reference oracle.
func WithOracle(fn func([]byte) bool) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.oracle = fn
		}
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		validator: validator.New(),
		oracle:    reference.Accepts,
		bound:     DefaultBound,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run enumerates the harness chunk to a verdict.
//
// Completion, counterexamples, deadline expiry, and oversized chunks all
// come back as an Outcome carrying the matching status. Explicit
// cancellation is the one exception: Run returns the context error and no
// outcome, and nothing must be recorded for the harness.
func (r *Runner) Run(ctx context.Context, h Harness) (Outcome, error) {
	if !h.Expect.Valid() {
		return Outcome{}, fmt.Errorf("harness %q: unknown expectation %q", h.Name, h.Expect)
	}
	if len(h.Chunk.Shape) == 0 {
		return Outcome{}, fmt.Errorf("harness %q: empty chunk shape", h.Name)
	}

	start := time.Now()
	if total := h.Bound(); total > r.bound {
		return Outcome{
			Harness: h,
			Status:  ledger.StatusError,
			Seconds: time.Since(start).Seconds(),
			Message: fmt.Sprintf("chunk holds %d candidates, exploration bound is %d", total, r.bound),
		}, nil
	}

	shape := h.Chunk.Shape
	buf := make([]byte, len(shape))
	for i, rg := range shape {
		buf[i] = rg.Lo
	}

	var explored uint64
	for {
		if explored%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return Outcome{
						Harness:  h,
						Status:   ledger.StatusTimeout,
						Seconds:  time.Since(start).Seconds(),
						Explored: explored,
						Message:  fmt.Sprintf("deadline exceeded after %d of %d candidates", explored, h.Bound()),
					}, nil
				}
				return Outcome{}, err
			}
		}

		got := r.validator.Accepts(buf)
		want := r.expected(h.Expect, buf)
		explored++
		if got != want {
			return Outcome{
				Harness:        h,
				Status:         ledger.StatusFailed,
				Seconds:        time.Since(start).Seconds(),
				Explored:       explored,
				Counterexample: append([]byte(nil), buf...),
				Message: fmt.Sprintf("counterexample % x: chain accepted=%v, expected accepted=%v",
					buf, got, want),
			}, nil
		}

		if !advance(buf, shape) {
			break
		}
	}

	return Outcome{
		Harness:  h,
		Status:   ledger.StatusSuccess,
		Seconds:  time.Since(start).Seconds(),
		Explored: explored,
	}, nil
}

func (r *Runner) expected(e Expectation, b []byte) bool {
	switch e {
	case ExpectAccept:
		return true
	case ExpectReject:
		return false
	default:
		return r.oracle(b)
	}
}

// advance steps buf to the next candidate in odometer order and reports
// false once the chunk is exhausted.
func advance(buf []byte, shape partition.Shape) bool {
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] < shape[i].Hi {
			buf[i]++
			return true
		}
		buf[i] = shape[i].Lo
	}
	return false
}
