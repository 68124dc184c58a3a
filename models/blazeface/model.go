package blazeface

import (
	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/nvr-ai/visioncore/models/postprocess"
	"gorgonia.org/tensor"
)

const (
	// DefaultInputName is the input tensor name of the exported model.
	DefaultInputName = "input"
	// DefaultRegressorsName is the output tensor name holding the box deltas.
	DefaultRegressorsName = "regressors"
	// DefaultClassificatorsName is the output tensor name holding the score logits.
	DefaultClassificatorsName = "classificators"
)

// BlazeFace is the instance of the BlazeFace model.
type BlazeFace struct {
	options model.Options
	anchors []Anchor
}

// NewModel creates a new BlazeFace model.
//
// Unset fields of args fall back to the exported model's defaults.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - The model.
//   - An error if the anchor table cannot be built.
func NewModel(args model.NewModelArgs) (*BlazeFace, error) {
	anchors, err := Anchors()
	if err != nil {
		return nil, err
	}

	opts := model.Options{
		Name:                model.ModelNameBlazeFace,
		Family:              model.ModelFamilyMediaPipe,
		Path:                args.Path,
		InputSize:           InputSize,
		ConfidenceThreshold: args.ConfidenceThreshold,
		NMS:                 args.NMS,
		Inputs:              args.Inputs,
		Outputs:             args.Outputs,
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.NMS == nil {
		opts.NMS = postprocess.DefaultNMSConfig()
	}
	if len(opts.Inputs) == 0 {
		opts.Inputs = []string{DefaultInputName}
	}
	if len(opts.Outputs) == 0 {
		opts.Outputs = []string{DefaultRegressorsName, DefaultClassificatorsName}
	}

	return &BlazeFace{options: opts, anchors: anchors}, nil
}

// Options returns the options for the BlazeFace model.
func (m *BlazeFace) Options() model.Options {
	return m.options
}

// Anchors returns the anchor table the model decodes against.
func (m *BlazeFace) Anchors() []Anchor {
	return m.anchors
}

// PreProcess pads, resizes and normalizes a frame into a 1x128x128x3 tensor.
func (m *BlazeFace) PreProcess(frame images.Frame) (*tensor.Dense, error) {
	return images.Preprocess(frame, InputSize)
}

// PostProcess decodes raw outputs into faces scaled to the given frame size.
func (m *BlazeFace) PostProcess(outputs model.Outputs, imageHeight, imageWidth int) ([]common.Face, error) {
	return decode(outputs.Deltas, outputs.Scores, m.anchors,
		m.options.ConfidenceThreshold, m.options.NMS, imageHeight, imageWidth)
}
