package blazeface

import (
	"testing"

	"github.com/nvr-ai/visioncore/images"
	"github.com/stretchr/testify/assert"
)

func delta(dy, dx, dh, dw float32) []float32 {
	d := make([]float32, DeltaStride)
	d[0], d[1], d[2], d[3] = dy, dx, dh, dw
	return d
}

func TestDecodeBox(t *testing.T) {
	center := Anchor{CenterY: 0.5, CenterX: 0.5, Height: 0.0625, Width: 0.0625}
	corner := Anchor{CenterY: 0.03125, CenterX: 0.03125, Height: 0.0625, Width: 0.0625}

	tests := []struct {
		name   string
		anchor Anchor
		delta  []float32
		want   images.Rect
	}{
		{
			name:   "zero delta collapses to the anchor center",
			anchor: center,
			delta:  delta(0, 0, 0, 0),
			want:   images.Rect{X1: 0.5, Y1: 0.5, X2: 0.5, Y2: 0.5},
		},
		{
			name:   "size comes straight from the delta",
			anchor: center,
			delta:  delta(0, 0, 32, 64),
			want:   images.Rect{X1: 0.25, Y1: 0.375, X2: 0.75, Y2: 0.625},
		},
		{
			name:   "center offset scales with the anchor",
			anchor: center,
			delta:  delta(16, -16, 32, 32),
			want:   images.Rect{X1: 0.3671875, Y1: 0.3828125, X2: 0.6171875, Y2: 0.6328125},
		},
		{
			name:   "edges clamp to the unit square",
			anchor: corner,
			delta:  delta(0, 0, 64, 64),
			want:   images.Rect{X1: 0, Y1: 0, X2: 0.28125, Y2: 0.28125},
		},
		{
			name:   "negative size inverts but stays clamped",
			anchor: center,
			delta:  delta(0, 0, -32, -32),
			want:   images.Rect{X1: 0.625, Y1: 0.625, X2: 0.375, Y2: 0.375},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeBox(tt.anchor, tt.delta, InputSize)
			assert.InDelta(t, tt.want.X1, got.X1, 1e-6)
			assert.InDelta(t, tt.want.Y1, got.Y1, 1e-6)
			assert.InDelta(t, tt.want.X2, got.X2, 1e-6)
			assert.InDelta(t, tt.want.Y2, got.Y2, 1e-6)
		})
	}
}

func TestDecodeBox_IgnoresKeypoints(t *testing.T) {
	anchor := Anchor{CenterY: 0.5, CenterX: 0.5, Height: 0.0625, Width: 0.0625}
	plain := delta(4, 4, 20, 20)
	noisy := delta(4, 4, 20, 20)
	for i := 4; i < DeltaStride; i++ {
		noisy[i] = float32(i) * 1000
	}

	assert.Equal(t, DecodeBox(anchor, plain, InputSize), DecodeBox(anchor, noisy, InputSize))
	assert.Equal(t, DecodeBox(anchor, plain, InputSize), DecodeBox(anchor, plain[:4], InputSize))
}
