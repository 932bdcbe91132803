package campaign

import (
	"sort"

	"veriseq/internal/partition"
	dErrors "veriseq/pkg/domain-errors"
)

// Registry holds the known spaces and plans harnesses over them. The
// built-in catalogue covers the UTF-8 structural grammar exhaustively by
// sequence length, plus printable-ASCII spaces where the syntax layers are
// checked against the reference oracle.
type Registry struct {
	spaces map[string]Space
}

func cont() partition.Range  { return partition.Range{Lo: 0x80, Hi: 0xBF} }
func ascii() partition.Range { return partition.Range{Lo: 0x20, Hi: 0x7E} }

func builtinSpaces() []Space {
	return []Space{
		{
			Name:        "utf8_one_byte",
			Shape:       partition.Shape{{Lo: 0x00, Hi: 0x7F}},
			Expect:      ExpectAccept,
			ChunkCounts: []int{1},
		},
		{
			Name:        "utf8_one_byte_invalid",
			Shape:       partition.Shape{{Lo: 0x80, Hi: 0xFF}},
			Expect:      ExpectReject,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_two_byte",
			Shape:       partition.Shape{{Lo: 0xC2, Hi: 0xDF}, cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{2, 4, 16},
		},
		{
			Name:        "utf8_two_byte_bad_continuation",
			Shape:       partition.Shape{{Lo: 0xC2, Hi: 0xDF}, {Lo: 0x00, Hi: 0x7F}},
			Expect:      ExpectReject,
			ChunkCounts: []int{2, 4},
		},
		{
			Name:        "utf8_two_byte_overlong",
			Shape:       partition.Shape{{Lo: 0xC0, Hi: 0xC1}, cont()},
			Expect:      ExpectReject,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_three_byte",
			Shape:       partition.Shape{{Lo: 0xE1, Hi: 0xEC}, cont(), cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{4, 12},
		},
		{
			Name:        "utf8_three_byte_e0",
			Shape:       partition.Shape{{Lo: 0xE0, Hi: 0xE0}, {Lo: 0xA0, Hi: 0xBF}, cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_three_byte_e0_overlong",
			Shape:       partition.Shape{{Lo: 0xE0, Hi: 0xE0}, {Lo: 0x80, Hi: 0x9F}, cont()},
			Expect:      ExpectReject,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_three_byte_ed",
			Shape:       partition.Shape{{Lo: 0xED, Hi: 0xED}, {Lo: 0x80, Hi: 0x9F}, cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_three_byte_surrogate",
			Shape:       partition.Shape{{Lo: 0xED, Hi: 0xED}, {Lo: 0xA0, Hi: 0xBF}, cont()},
			Expect:      ExpectReject,
			ChunkCounts: []int{1, 2},
		},
		{
			Name:        "utf8_three_byte_high",
			Shape:       partition.Shape{{Lo: 0xEE, Hi: 0xEF}, cont(), cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{2},
		},
		{
			Name:        "utf8_four_byte",
			Shape:       partition.Shape{{Lo: 0xF1, Hi: 0xF3}, cont(), cont(), cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{3},
		},
		{
			Name:        "utf8_four_byte_f0",
			Shape:       partition.Shape{{Lo: 0xF0, Hi: 0xF0}, {Lo: 0x90, Hi: 0xBF}, cont(), cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{3},
		},
		{
			Name:        "utf8_four_byte_f4",
			Shape:       partition.Shape{{Lo: 0xF4, Hi: 0xF4}, {Lo: 0x80, Hi: 0x8F}, cont(), cont()},
			Expect:      ExpectAccept,
			ChunkCounts: []int{1, 3},
		},
		{
			Name:        "utf8_four_byte_beyond_max",
			Shape:       partition.Shape{{Lo: 0xF4, Hi: 0xF4}, {Lo: 0x90, Hi: 0xBF}, cont(), cont()},
			Expect:      ExpectReject,
			ChunkCounts: []int{1, 3},
		},
		{
			Name:        "utf8_invalid_lead",
			Shape:       partition.Shape{{Lo: 0xF5, Hi: 0xFF}},
			Expect:      ExpectReject,
			ChunkCounts: []int{1},
		},
		{
			Name:        "syntax_ascii_len2",
			Shape:       partition.Shape{ascii(), ascii()},
			Expect:      ExpectOracleAgreement,
			ChunkCounts: []int{2},
		},
		{
			Name:        "syntax_ascii_len3",
			Shape:       partition.Shape{ascii(), ascii(), ascii()},
			Expect:      ExpectOracleAgreement,
			ChunkCounts: []int{5},
		},
	}
}

// NewRegistry builds a registry with the built-in spaces.
func NewRegistry() *Registry {
	r := &Registry{spaces: make(map[string]Space)}
	for _, s := range builtinSpaces() {
		r.spaces[s.Name] = s
	}
	return r
}

// Register adds or replaces a space.
func (r *Registry) Register(s Space) error {
	if s.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "space requires a name")
	}
	if len(s.Shape) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "space requires a shape")
	}
	if !s.Expect.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown expectation %q", s.Expect)
	}
	r.spaces[s.Name] = s
	return nil
}

// Get returns the named space.
func (r *Registry) Get(name string) (Space, error) {
	s, ok := r.spaces[name]
	if !ok {
		return Space{}, dErrors.Newf(dErrors.CodeNotFound, "unknown space %q", name)
	}
	return s, nil
}

// Spaces returns all spaces sorted by name.
func (r *Registry) Spaces() []Space {
	out := make([]Space, 0, len(r.spaces))
	for _, s := range r.spaces {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Harnesses plans the named space into n chunks along the first byte
// position and returns one harness per chunk, in chunk order. n <= 0 picks
// the space's default granularity.
func (r *Registry) Harnesses(name string, n int) ([]Harness, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.DefaultChunks()
	}
	plan, err := partition.New(s.Shape, 0, n)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	out := make([]Harness, 0, len(plan.Chunks))
	for _, c := range plan.Chunks {
		out = append(out, Harness{
			Name:   HarnessName(s.Name, n, c.Index),
			Space:  s.Name,
			Expect: s.Expect,
			Chunk:  c,
			Of:     n,
		})
	}
	return out, nil
}
