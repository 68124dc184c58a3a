package blazeface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAnchors(t *testing.T) {
	anchors, err := GenerateAnchors(InputSize)
	require.NoError(t, err)
	require.Len(t, anchors, NumAnchors)

	tests := []struct {
		name  string
		index int
		want  Anchor
	}{
		{
			name:  "first stride 8 anchor",
			index: 0,
			want:  Anchor{CenterY: 0.03125, CenterX: 0.03125, Height: 0.0625, Width: 0.0625},
		},
		{
			name:  "odd in-cell index is 1.5x larger",
			index: 1,
			want:  Anchor{CenterY: 0.03125, CenterX: 0.03125, Height: 0.09375, Width: 0.09375},
		},
		{
			name:  "columns advance before rows",
			index: 2,
			want:  Anchor{CenterY: 0.03125, CenterX: 0.09375, Height: 0.0625, Width: 0.0625},
		},
		{
			name:  "second row of the stride 8 grid",
			index: 32,
			want:  Anchor{CenterY: 0.09375, CenterX: 0.03125, Height: 0.0625, Width: 0.0625},
		},
		{
			name:  "first stride 16 anchor",
			index: 512,
			want:  Anchor{CenterY: 0.0625, CenterX: 0.0625, Height: 0.125, Width: 0.125},
		},
		{
			name:  "last anchor",
			index: NumAnchors - 1,
			want:  Anchor{CenterY: 0.9375, CenterX: 0.9375, Height: 0.1875, Width: 0.1875},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anchors[tt.index])
		})
	}
}

func TestGenerateAnchors_Normalized(t *testing.T) {
	anchors, err := GenerateAnchors(InputSize)
	require.NoError(t, err)

	for i, a := range anchors {
		assert.True(t, a.CenterY > 0 && a.CenterY < 1, "anchor %d center y %f", i, a.CenterY)
		assert.True(t, a.CenterX > 0 && a.CenterX < 1, "anchor %d center x %f", i, a.CenterX)
		assert.Equal(t, a.Height, a.Width, "anchor %d is square", i)
	}
}

func TestGenerateAnchors_Deterministic(t *testing.T) {
	first, err := GenerateAnchors(InputSize)
	require.NoError(t, err)
	second, err := GenerateAnchors(InputSize)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateAnchors_WrongTopology(t *testing.T) {
	for _, size := range []int{0, -128, 64, 256} {
		anchors, err := GenerateAnchors(size)
		assert.ErrorIs(t, err, ErrAnchorCount, "size %d", size)
		assert.Nil(t, anchors)
	}
}

func TestAnchors_Memoized(t *testing.T) {
	a, err := Anchors()
	require.NoError(t, err)
	b := MustAnchors()

	require.Len(t, a, NumAnchors)
	assert.Same(t, &a[0], &b[0], "the table is built once and shared")

	fresh, err := GenerateAnchors(InputSize)
	require.NoError(t, err)
	assert.Equal(t, fresh, a)
}

func BenchmarkGenerateAnchors(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateAnchors(InputSize); err != nil {
			b.Fatal(err)
		}
	}
}
