// Package postprocess - Postprocessing utilities for models.
package postprocess

import "github.com/nvr-ai/visioncore/images"

// Result represents a single candidate detection.
type Result struct {
	// The bounding box of the result, normalized to the model input.
	Box images.Rect
	// The confidence score of the result, a probability in [0, 1].
	Score float32
	// The predicted class index of the result. Single-class models leave it at 0.
	Class int
	// The index of the anchor the result was decoded from.
	Anchor int
}
