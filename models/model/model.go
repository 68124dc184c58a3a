// Package model - Definitions shared by every detection model.
package model

import (
	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/models/postprocess"
	"gorgonia.org/tensor"
)

// Family is the family of models.
type Family string

const (
	// ModelFamilyMediaPipe is the MediaPipe model family.
	ModelFamilyMediaPipe Family = "mediapipe"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameBlazeFace is the name of the BlazeFace short range face detector.
	ModelNameBlazeFace Name = "blazeface"
)

// Outputs holds the raw tensors produced by one inference call, flattened row-major.
type Outputs struct {
	// Deltas is the regression tensor, one row of box and keypoint offsets per anchor.
	Deltas []float32
	// Scores is the classification tensor, one logit per anchor.
	Scores []float32
}

// Options describes a model instance.
type Options struct {
	Name                Name                   `json:"name" yaml:"name"`
	Family              Family                 `json:"family" yaml:"family"`
	Path                string                 `json:"path" yaml:"path"`
	InputSize           int                    `json:"input_size" yaml:"input_size"`
	ConfidenceThreshold float32                `json:"confidence_threshold" yaml:"confidence_threshold"`
	NMS                 *postprocess.NMSConfig `json:"nms" yaml:"nms"`
	Inputs              []string               `json:"inputs" yaml:"inputs"`
	Outputs             []string               `json:"outputs" yaml:"outputs"`
}

// Model turns frames into input tensors and raw outputs into faces.
type Model interface {
	Options() Options
	PreProcess(frame images.Frame) (*tensor.Dense, error)
	PostProcess(outputs Outputs, imageHeight, imageWidth int) ([]common.Face, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name                Name                   `json:"name" yaml:"name"`
	Path                string                 `json:"path" yaml:"path"`
	InputSize           int                    `json:"input_size" yaml:"input_size"`
	ConfidenceThreshold float32                `json:"confidence_threshold" yaml:"confidence_threshold"`
	NMS                 *postprocess.NMSConfig `json:"nms" yaml:"nms"`
	Inputs              []string               `json:"inputs" yaml:"inputs"`
	Outputs             []string               `json:"outputs" yaml:"outputs"`
}
