package blazeface

import (
	"testing"

	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/nvr-ai/visioncore/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel_Defaults(t *testing.T) {
	m, err := NewModel(model.NewModelArgs{Path: "blazeface.onnx"})
	require.NoError(t, err)

	opts := m.Options()
	assert.Equal(t, model.ModelNameBlazeFace, opts.Name)
	assert.Equal(t, model.ModelFamilyMediaPipe, opts.Family)
	assert.Equal(t, "blazeface.onnx", opts.Path)
	assert.Equal(t, InputSize, opts.InputSize)
	assert.Equal(t, float32(DefaultConfidenceThreshold), opts.ConfidenceThreshold)
	assert.Equal(t, postprocess.DefaultNMSConfig(), opts.NMS)
	assert.Equal(t, []string{DefaultInputName}, opts.Inputs)
	assert.Equal(t, []string{DefaultRegressorsName, DefaultClassificatorsName}, opts.Outputs)
	assert.Len(t, m.Anchors(), NumAnchors)
}

func TestBlazeFace_PostProcess(t *testing.T) {
	m, err := NewModel(model.NewModelArgs{
		ConfidenceThreshold: 0.6,
		NMS:                 &postprocess.NMSConfig{IoUThreshold: 0.2, MaxDetections: 1},
	})
	require.NoError(t, err)

	deltas, scores := outputs(-10)
	scores[0], scores[NumAnchors-1] = 3, 4
	// Sigmoid(0.3) is below 0.6.
	scores[300] = 0.3

	faces, err := m.PostProcess(model.Outputs{Deltas: deltas, Scores: scores}, 240, 320)
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.InDelta(t, Sigmoid(4), faces[0].Score, 1e-7)
	assert.Equal(t, 240, faces[0].FrameHeight)

	_, err = m.PostProcess(model.Outputs{Scores: scores}, 240, 320)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBlazeFace_PreProcess(t *testing.T) {
	m, err := NewModel(model.NewModelArgs{})
	require.NoError(t, err)

	frame := images.Frame{Data: make([]byte, 64*48*images.Channels), Width: 64, Height: 48}
	input, err := m.PreProcess(frame)
	require.NoError(t, err)
	assert.Equal(t, []int{1, InputSize, InputSize, images.Channels}, []int(input.Shape()))

	_, err = m.PreProcess(images.Frame{Width: 64, Height: 48})
	assert.ErrorIs(t, err, images.ErrInvalidFrame)
}
