// Package partition turns one large byte-sequence space into disjoint,
// jointly exhaustive chunks so that a verification campaign can enumerate
// each chunk as its own harness. Chunking is always along a single byte
// position; every other position keeps the full range of the base shape.
package partition

import (
	"fmt"

	dErrors "veriseq/pkg/domain-errors"
)

// Range is an inclusive byte interval.
type Range struct {
	Lo byte
	Hi byte
}

func (r Range) Size() int { return int(r.Hi) - int(r.Lo) + 1 }

func (r Range) Contains(b byte) bool { return b >= r.Lo && b <= r.Hi }

func (r Range) String() string { return fmt.Sprintf("[%#02x,%#02x]", r.Lo, r.Hi) }

// Shape describes a space of fixed-length byte sequences: one inclusive
// range per position. The space is the cross product of the ranges.
type Shape []Range

// Size returns the number of sequences in the space.
func (s Shape) Size() uint64 {
	n := uint64(1)
	for _, r := range s {
		n *= uint64(r.Size())
	}
	return n
}

// Contains reports whether b is one of the space's sequences.
func (s Shape) Contains(b []byte) bool {
	if len(b) != len(s) {
		return false
	}
	for i, r := range s {
		if !r.Contains(b[i]) {
			return false
		}
	}
	return true
}

func (s Shape) clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Chunk is one cell of a plan: the base shape with the split axis narrowed
// to a sub-range. Index is the chunk's zero-based position in the plan.
type Chunk struct {
	Index int
	Shape Shape
}

// Plan is a complete partition of a base shape along one axis.
type Plan struct {
	Base   Shape
	Axis   int
	Chunks []Chunk
}

// Split divides r into n contiguous sub-ranges. Sizes differ by at most one,
// with the larger sub-ranges first. n must be positive and at most the
// number of values in r.
func Split(r Range, n int) ([]Range, error) {
	if n <= 0 {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "chunk count %d must be positive", n)
	}
	total := r.Size()
	if n > total {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"cannot split %d values of %s into %d chunks", total, r, n)
	}

	base := total / n
	rem := total % n
	out := make([]Range, 0, n)
	lo := int(r.Lo)
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		out = append(out, Range{Lo: byte(lo), Hi: byte(lo + size - 1)})
		lo += size
	}
	return out, nil
}

// New partitions base into n chunks along the given axis.
func New(base Shape, axis, n int) (Plan, error) {
	if len(base) == 0 {
		return Plan{}, dErrors.New(dErrors.CodeInvalidInput, "empty shape")
	}
	if axis < 0 || axis >= len(base) {
		return Plan{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"axis %d out of bounds for %d-byte shape", axis, len(base))
	}
	ranges, err := Split(base[axis], n)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Base: base.clone(), Axis: axis, Chunks: make([]Chunk, 0, len(ranges))}
	for i, r := range ranges {
		shape := base.clone()
		shape[axis] = r
		plan.Chunks = append(plan.Chunks, Chunk{Index: i, Shape: shape})
	}
	return plan, nil
}

// ForTarget partitions base along the given axis into the fewest chunks
// whose size does not exceed target sequences per chunk. The axis range
// caps the achievable granularity: a chunk is never narrower than one
// axis byte.
func ForTarget(base Shape, axis int, target uint64) (Plan, error) {
	if target == 0 {
		return Plan{}, dErrors.New(dErrors.CodeInvalidInput, "target must be positive")
	}
	if len(base) == 0 {
		return Plan{}, dErrors.New(dErrors.CodeInvalidInput, "empty shape")
	}
	if axis < 0 || axis >= len(base) {
		return Plan{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"axis %d out of bounds for %d-byte shape", axis, len(base))
	}
	axisSize := base[axis].Size()
	rest := base.Size() / uint64(axisSize)
	perChunk := int(target / rest)
	if perChunk < 1 {
		perChunk = 1
	}
	n := (axisSize + perChunk - 1) / perChunk
	return New(base, axis, n)
}

// Validate checks the partition arithmetic: every chunk matches the base
// shape off-axis, the axis sub-ranges tile the base range exactly in order,
// and the chunk sizes sum to the base size. A valid plan is disjoint and
// exhaustive by construction of those checks.
func (p Plan) Validate() error {
	if len(p.Chunks) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "plan has no chunks")
	}
	if p.Axis < 0 || p.Axis >= len(p.Base) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "plan axis %d out of bounds", p.Axis)
	}

	var sum uint64
	next := int(p.Base[p.Axis].Lo)
	for i, c := range p.Chunks {
		if c.Index != i {
			return dErrors.Newf(dErrors.CodeInvalidInput, "chunk %d carries index %d", i, c.Index)
		}
		if len(c.Shape) != len(p.Base) {
			return dErrors.Newf(dErrors.CodeInvalidInput, "chunk %d shape length mismatch", i)
		}
		for pos, r := range c.Shape {
			if pos != p.Axis && r != p.Base[pos] {
				return dErrors.Newf(dErrors.CodeInvalidInput,
					"chunk %d deviates from base at position %d", i, pos)
			}
		}
		r := c.Shape[p.Axis]
		if int(r.Lo) != next {
			return dErrors.Newf(dErrors.CodeInvalidInput,
				"chunk %d starts at %#02x, want %#02x", i, r.Lo, next)
		}
		if r.Hi < r.Lo {
			return dErrors.Newf(dErrors.CodeInvalidInput, "chunk %d range %s inverted", i, r)
		}
		next = int(r.Hi) + 1
		sum += c.Shape.Size()
	}
	if next != int(p.Base[p.Axis].Hi)+1 {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"chunks end at %#02x, want %#02x", next-1, p.Base[p.Axis].Hi)
	}
	if sum != p.Base.Size() {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"chunk sizes sum to %d, base space has %d", sum, p.Base.Size())
	}
	return nil
}
