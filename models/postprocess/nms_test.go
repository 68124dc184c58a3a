package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/visioncore/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x1, y1, x2, y2 float32) images.Rect {
	return images.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestApplyGreedyNMS_Empty(t *testing.T) {
	assert.Nil(t, ApplyGreedyNMS(nil, DefaultNMSConfig()))
	assert.Nil(t, ApplyGreedyNMS([]Result{}, nil))
}

func TestApplyGreedyNMS(t *testing.T) {
	tests := []struct {
		name       string
		input      []Result
		config     *NMSConfig
		wantAnchor []int
	}{
		{
			name: "disjoint boxes are all kept, highest score first",
			input: []Result{
				{Box: box(0, 0, 0.1, 0.1), Score: 0.6, Anchor: 0},
				{Box: box(0.5, 0.5, 0.6, 0.6), Score: 0.9, Anchor: 1},
				{Box: box(0.8, 0.8, 0.9, 0.9), Score: 0.7, Anchor: 2},
			},
			config:     DefaultNMSConfig(),
			wantAnchor: []int{1, 2, 0},
		},
		{
			name: "cluster collapses to its best box",
			input: []Result{
				{Box: box(0.10, 0.10, 0.50, 0.50), Score: 0.80, Anchor: 0},
				{Box: box(0.12, 0.12, 0.52, 0.52), Score: 0.95, Anchor: 1},
				{Box: box(0.11, 0.09, 0.49, 0.51), Score: 0.70, Anchor: 2},
				{Box: box(0.70, 0.70, 0.90, 0.90), Score: 0.60, Anchor: 3},
			},
			config:     DefaultNMSConfig(),
			wantAnchor: []int{1, 3},
		},
		{
			name: "equal scores keep the earlier candidate",
			input: []Result{
				{Box: box(0.2, 0.2, 0.4, 0.4), Score: 0.5, Anchor: 7},
				{Box: box(0.2, 0.2, 0.4, 0.4), Score: 0.5, Anchor: 3},
			},
			config:     DefaultNMSConfig(),
			wantAnchor: []int{7},
		},
		{
			name: "overlap exactly at the threshold is kept",
			input: []Result{
				// Intersection 0.5, union 1.5, IoU = 1/3.
				{Box: box(0, 0, 1, 1), Score: 0.9, Anchor: 0},
				{Box: box(0.5, 0, 1.5, 1), Score: 0.8, Anchor: 1},
			},
			config:     &NMSConfig{IoUThreshold: 1.0 / 3.0},
			wantAnchor: []int{0, 1},
		},
		{
			name: "zero threshold keeps one box per overlapping set",
			input: []Result{
				{Box: box(0, 0, 0.5, 0.5), Score: 0.5, Anchor: 0},
				{Box: box(0.49, 0.49, 0.6, 0.6), Score: 0.6, Anchor: 1},
				{Box: box(0.7, 0.7, 0.8, 0.8), Score: 0.4, Anchor: 2},
			},
			config:     &NMSConfig{IoUThreshold: 0},
			wantAnchor: []int{1, 2},
		},
		{
			name: "degenerate boxes never suppress each other",
			input: []Result{
				{Box: box(0.5, 0.5, 0.5, 0.5), Score: 0.9, Anchor: 0},
				{Box: box(0.5, 0.5, 0.5, 0.5), Score: 0.8, Anchor: 1},
				{Box: box(0.6, 0.6, 0.4, 0.4), Score: 0.7, Anchor: 2},
			},
			config:     DefaultNMSConfig(),
			wantAnchor: []int{0, 1, 2},
		},
		{
			name: "class aware suppression ignores other classes",
			input: []Result{
				{Box: box(0.1, 0.1, 0.5, 0.5), Score: 0.9, Class: 0, Anchor: 0},
				{Box: box(0.1, 0.1, 0.5, 0.5), Score: 0.8, Class: 1, Anchor: 1},
				{Box: box(0.1, 0.1, 0.5, 0.5), Score: 0.7, Class: 0, Anchor: 2},
			},
			config:     &NMSConfig{IoUThreshold: 0.2, ClassAware: true},
			wantAnchor: []int{0, 1},
		},
		{
			name: "max detections caps the output",
			input: []Result{
				{Box: box(0, 0, 0.1, 0.1), Score: 0.3, Anchor: 0},
				{Box: box(0.2, 0.2, 0.3, 0.3), Score: 0.2, Anchor: 1},
				{Box: box(0.4, 0.4, 0.5, 0.5), Score: 0.1, Anchor: 2},
			},
			config:     &NMSConfig{IoUThreshold: 0.2, MaxDetections: 2},
			wantAnchor: []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGreedyNMS(tt.input, tt.config)

			anchors := make([]int, len(got))
			for i, r := range got {
				anchors[i] = r.Anchor
			}
			assert.Equal(t, tt.wantAnchor, anchors)
		})
	}
}

func TestApplyGreedyNMS_DoesNotMutateInput(t *testing.T) {
	input := []Result{
		{Box: box(0, 0, 0.1, 0.1), Score: 0.1, Anchor: 0},
		{Box: box(0.5, 0.5, 0.6, 0.6), Score: 0.9, Anchor: 1},
	}
	snapshot := append([]Result(nil), input...)

	ApplyGreedyNMS(input, DefaultNMSConfig())

	assert.Equal(t, snapshot, input)
}

// TestApplyGreedyNMS_RandomPopulation checks the pairwise overlap bound and that the global best
// box always survives, over a deterministic pseudo-random population.
func TestApplyGreedyNMS_RandomPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		input := make([]Result, 60)
		best := 0
		for i := range input {
			x, y := rng.Float32()*0.8, rng.Float32()*0.8
			w, h := 0.05+rng.Float32()*0.2, 0.05+rng.Float32()*0.2
			input[i] = Result{Box: box(x, y, x+w, y+h), Score: rng.Float32(), Anchor: i}
			if input[i].Score > input[best].Score {
				best = i
			}
		}

		threshold := float32(0.2)
		kept := ApplyGreedyNMS(input, &NMSConfig{IoUThreshold: threshold})

		require.NotEmpty(t, kept)
		assert.Equal(t, best, kept[0].Anchor, "highest scoring box must be kept first")

		for i := range kept {
			if i > 0 {
				assert.GreaterOrEqual(t, kept[i-1].Score, kept[i].Score)
			}
			for j := i + 1; j < len(kept); j++ {
				assert.LessOrEqual(t, images.CalculateIoU(kept[i].Box, kept[j].Box), threshold)
			}
		}
	}
}

func TestSortByScore_Stable(t *testing.T) {
	input := []Result{
		{Score: 0.5, Anchor: 0},
		{Score: 0.9, Anchor: 1},
		{Score: 0.5, Anchor: 2},
		{Score: 0.5, Anchor: 3},
	}

	sorted := SortByScore(input)

	anchors := []int{sorted[0].Anchor, sorted[1].Anchor, sorted[2].Anchor, sorted[3].Anchor}
	assert.Equal(t, []int{1, 0, 2, 3}, anchors)
	assert.Equal(t, 0, input[0].Anchor, "input order is untouched")
}
