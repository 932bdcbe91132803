package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name string
		r    Range
		n    int
		want []Range
	}{
		{
			name: "even split",
			r:    Range{0xE1, 0xEC},
			n:    4,
			want: []Range{{0xE1, 0xE3}, {0xE4, 0xE6}, {0xE7, 0xE9}, {0xEA, 0xEC}},
		},
		{
			name: "remainder goes to the first chunks",
			r:    Range{0x00, 0x09},
			n:    3,
			want: []Range{{0x00, 0x03}, {0x04, 0x06}, {0x07, 0x09}},
		},
		{
			name: "single chunk",
			r:    Range{0xC2, 0xDF},
			n:    1,
			want: []Range{{0xC2, 0xDF}},
		},
		{
			name: "one value per chunk",
			r:    Range{0x41, 0x43},
			n:    3,
			want: []Range{{0x41, 0x41}, {0x42, 0x42}, {0x43, 0x43}},
		},
		{
			name: "full byte range",
			r:    Range{0x00, 0xFF},
			n:    2,
			want: []Range{{0x00, 0x7F}, {0x80, 0xFF}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Split(tc.r, tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitErrors(t *testing.T) {
	_, err := Split(Range{0x00, 0x03}, 0)
	require.Error(t, err)

	_, err = Split(Range{0x00, 0x03}, -1)
	require.Error(t, err)

	_, err = Split(Range{0x00, 0x03}, 5)
	require.Error(t, err, "more chunks than values")
}

func TestSplitTilesExactly(t *testing.T) {
	r := Range{0x80, 0xBF}
	for n := 1; n <= r.Size(); n++ {
		chunks, err := Split(r, n)
		require.NoError(t, err)
		require.Len(t, chunks, n)

		next := int(r.Lo)
		total := 0
		for i, c := range chunks {
			assert.Equal(t, next, int(c.Lo), "n=%d chunk %d", n, i)
			assert.GreaterOrEqual(t, int(c.Hi), int(c.Lo))
			next = int(c.Hi) + 1
			total += c.Size()
		}
		assert.Equal(t, int(r.Hi)+1, next, "n=%d", n)
		assert.Equal(t, r.Size(), total, "n=%d", n)
	}
}

func TestNewPlan(t *testing.T) {
	base := Shape{{0xE1, 0xEC}, {0x80, 0xBF}, {0x80, 0xBF}}

	plan, err := New(base, 0, 4)
	require.NoError(t, err)
	require.NoError(t, plan.Validate())
	require.Len(t, plan.Chunks, 4)

	assert.Equal(t, Range{0xE1, 0xE3}, plan.Chunks[0].Shape[0])
	assert.Equal(t, Range{0xEA, 0xEC}, plan.Chunks[3].Shape[0])
	for _, c := range plan.Chunks {
		assert.Equal(t, base[1], c.Shape[1])
		assert.Equal(t, base[2], c.Shape[2])
	}

	var sum uint64
	for _, c := range plan.Chunks {
		sum += c.Shape.Size()
	}
	assert.Equal(t, base.Size(), sum)
}

func TestNewPlanErrors(t *testing.T) {
	base := Shape{{0xC2, 0xDF}, {0x80, 0xBF}}

	_, err := New(nil, 0, 1)
	require.Error(t, err)

	_, err = New(base, 2, 1)
	require.Error(t, err, "axis out of bounds")

	_, err = New(base, 0, 64)
	require.Error(t, err, "more chunks than lead bytes")
}

func TestValidateCatchesCorruption(t *testing.T) {
	base := Shape{{0xE1, 0xEC}, {0x80, 0xBF}}

	t.Run("gap", func(t *testing.T) {
		plan, err := New(base, 0, 4)
		require.NoError(t, err)
		plan.Chunks[2].Shape[0].Lo++
		require.Error(t, plan.Validate())
	})

	t.Run("overlap", func(t *testing.T) {
		plan, err := New(base, 0, 4)
		require.NoError(t, err)
		plan.Chunks[1].Shape[0].Lo--
		require.Error(t, plan.Validate())
	})

	t.Run("short coverage", func(t *testing.T) {
		plan, err := New(base, 0, 4)
		require.NoError(t, err)
		plan.Chunks[3].Shape[0].Hi--
		require.Error(t, plan.Validate())
	})

	t.Run("off axis drift", func(t *testing.T) {
		plan, err := New(base, 0, 4)
		require.NoError(t, err)
		plan.Chunks[0].Shape[1].Hi--
		require.Error(t, plan.Validate())
	})

	t.Run("bad index", func(t *testing.T) {
		plan, err := New(base, 0, 4)
		require.NoError(t, err)
		plan.Chunks[0].Index = 3
		require.Error(t, plan.Validate())
	})
}

func TestShapeContains(t *testing.T) {
	s := Shape{{0xE0, 0xE0}, {0xA0, 0xBF}, {0x80, 0xBF}}

	assert.True(t, s.Contains([]byte{0xE0, 0xA0, 0x80}))
	assert.True(t, s.Contains([]byte{0xE0, 0xBF, 0xBF}))
	assert.False(t, s.Contains([]byte{0xE0, 0x9F, 0x80}), "below second-byte window")
	assert.False(t, s.Contains([]byte{0xE1, 0xA0, 0x80}), "outside lead range")
	assert.False(t, s.Contains([]byte{0xE0, 0xA0}), "wrong length")
}

func TestForTarget(t *testing.T) {
	base := Shape{{0xC2, 0xDF}, {0x80, 0xBF}}

	t.Run("fewest chunks under the target", func(t *testing.T) {
		plan, err := ForTarget(base, 0, 500)
		require.NoError(t, err)
		require.NoError(t, plan.Validate())
		assert.Len(t, plan.Chunks, 5)
		for _, chunk := range plan.Chunks {
			assert.LessOrEqual(t, chunk.Shape.Size(), uint64(500))
		}
	})

	t.Run("target above the space yields one chunk", func(t *testing.T) {
		plan, err := ForTarget(base, 0, 1<<20)
		require.NoError(t, err)
		assert.Len(t, plan.Chunks, 1)
	})

	t.Run("granularity is capped by the axis width", func(t *testing.T) {
		plan, err := ForTarget(base, 0, 1)
		require.NoError(t, err)
		require.NoError(t, plan.Validate())
		assert.Len(t, plan.Chunks, 30)
	})

	t.Run("zero target is rejected", func(t *testing.T) {
		_, err := ForTarget(base, 0, 0)
		require.Error(t, err)
	})
}
