package blazeface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, float32(0.5), Sigmoid(0))
	assert.InDelta(t, 0.99995460, Sigmoid(10), 1e-6)
	assert.InDelta(t, 0.0000454, Sigmoid(-10), 1e-6)

	prev := Sigmoid(-15)
	assert.Greater(t, prev, float32(0))
	for l := float32(-14.5); l <= 15; l += 0.5 {
		p := Sigmoid(l)
		assert.Greater(t, p, prev, "sigmoid must increase at %f", l)
		assert.Less(t, p, float32(1))
		prev = p
	}
}

func TestFilterScores(t *testing.T) {
	tests := []struct {
		name      string
		scores    []float32
		threshold float32
		want      []int
	}{
		{
			name:      "keeps passing anchors in index order",
			scores:    []float32{-1, 3, 0, -3, 0.1, 10},
			threshold: 0.5,
			want:      []int{1, 2, 4, 5},
		},
		{
			name:      "nothing passes",
			scores:    []float32{-10, -2, -0.1},
			threshold: 0.5,
			want:      []int{},
		},
		{
			name:      "threshold of one rejects every finite logit",
			scores:    []float32{10, 5, 0, -10},
			threshold: 1.0,
			want:      []int{},
		},
		{
			name:      "threshold of zero keeps everything",
			scores:    []float32{-10, 0, 10},
			threshold: 0,
			want:      []int{0, 1, 2},
		},
		{
			name:      "empty input",
			scores:    nil,
			threshold: 0.5,
			want:      []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterScores(tt.scores, tt.threshold)

			indices := make([]int, len(got))
			for i, c := range got {
				indices[i] = c.Index
				assert.Equal(t, Sigmoid(tt.scores[c.Index]), c.Probability)
				assert.GreaterOrEqual(t, c.Probability, tt.threshold)
			}
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, indices)
		})
	}
}
