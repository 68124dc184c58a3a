// Package blazeface - Decoding for the BlazeFace short range face detector.
//
// The model emits a box regression row and a score logit for each of 896 fixed anchors. The
// decode pipeline filters anchors by confidence, regresses their boxes, suppresses overlapping
// boxes and maps the survivors into source frame pixels.
package blazeface

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	// InputSize is the side in pixels of the square model input.
	InputSize = 128
	// NumAnchors is the number of anchors for InputSize.
	NumAnchors = 896
	// DeltaStride is the number of regression values per anchor. Only the first four are boxes.
	DeltaStride = 16
)

// anchorLayer is one feature map of the detector head.
type anchorLayer struct {
	stride  int
	perCell int
}

// Layers are visited in this order and the order defines anchor identity.
var anchorLayers = []anchorLayer{
	{stride: 8, perCell: 2},
	{stride: 16, perCell: 6},
}

// Anchor is a prior box in normalized coordinates.
type Anchor struct {
	CenterY float32 `json:"center_y"`
	CenterX float32 `json:"center_x"`
	Height  float32 `json:"height"`
	Width   float32 `json:"width"`
}

// Center returns the (y, x) center of the anchor.
func (a Anchor) Center() [2]float32 {
	return [2]float32{a.CenterY, a.CenterX}
}

// GenerateAnchors builds the anchor table for a square input of the given size.
//
// Anchors are ordered by stride, then grid row, then grid column, then in-cell index. Within a
// cell, even indices get a side of stride/inputSize and odd indices 1.5 times that.
//
// Arguments:
//   - inputSize: The side of the model input in pixels.
//
// Returns:
//   - The anchors, NumAnchors of them.
//   - ErrAnchorCount if inputSize does not produce the fixed topology.
func GenerateAnchors(inputSize int) ([]Anchor, error) {
	if inputSize <= 0 {
		return nil, errors.Wrapf(ErrAnchorCount, "input size %d", inputSize)
	}

	anchors := make([]Anchor, 0, NumAnchors)
	for _, layer := range anchorLayers {
		grid := inputSize / layer.stride
		base := float32(layer.stride) / float32(inputSize)

		for y := 0; y < grid; y++ {
			cy := (float32(y) + 0.5) / float32(grid)
			for x := 0; x < grid; x++ {
				cx := (float32(x) + 0.5) / float32(grid)
				for i := 0; i < layer.perCell; i++ {
					side := base
					if i%2 == 1 {
						side *= 1.5
					}
					anchors = append(anchors, Anchor{CenterY: cy, CenterX: cx, Height: side, Width: side})
				}
			}
		}
	}

	if len(anchors) != NumAnchors {
		return nil, errors.Wrapf(ErrAnchorCount, "input size %d produced %d anchors, want %d",
			inputSize, len(anchors), NumAnchors)
	}
	return anchors, nil
}

var defaultAnchors = sync.OnceValues(func() ([]Anchor, error) {
	return GenerateAnchors(InputSize)
})

// Anchors returns the process-wide table for InputSize, built on first use.
//
// The returned slice is shared and must not be modified.
func Anchors() ([]Anchor, error) {
	return defaultAnchors()
}

// MustAnchors is like Anchors but panics on error.
func MustAnchors() []Anchor {
	anchors, err := Anchors()
	if err != nil {
		panic(err)
	}
	return anchors
}
