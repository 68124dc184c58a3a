// Package common - Detection records shared between the decoder and its consumers.
package common

import (
	"fmt"
	"image"

	"github.com/nvr-ai/visioncore/images"
)

// Face is a single face detection in source image coordinates.
//
// A Face is immutable once built and owned by whoever received it.
type Face struct {
	// BBox is the detection box in pixels.
	BBox images.Rect
	// BBoxRaw is the detection box normalized to the model input, unaffected by any padding
	// applied to the source frame.
	BBoxRaw images.Rect
	// Center is the (y, x) point in pixels the detection was anchored on.
	Center [2]float32
	// Score is the detection probability in [0, 1].
	Score float32
	// FrameHeight is the height in pixels of the frame the box was scaled against.
	FrameHeight int
	// FrameWidth is the width in pixels of the frame the box was scaled against.
	FrameWidth int
}

// NewFace maps a normalized detection into a frame of the given size.
//
// Arguments:
//   - bbox: The normalized box.
//   - center: The normalized (y, x) center point.
//   - score: The detection probability.
//   - imageHeight: The frame height in pixels.
//   - imageWidth: The frame width in pixels.
//
// Returns:
//   - Face: The detection in pixel coordinates, carrying the raw box alongside.
func NewFace(bbox images.Rect, center [2]float32, score float32, imageHeight, imageWidth int) Face {
	h, w := float32(imageHeight), float32(imageWidth)
	return Face{
		BBox:        ScaleBBox(bbox, h, w),
		BBoxRaw:     bbox,
		Center:      ScaleCenter(center, h, w),
		Score:       score,
		FrameHeight: imageHeight,
		FrameWidth:  imageWidth,
	}
}

// ScaleBBox multiplies a normalized box by the frame dimensions, per axis.
//
// No clamping happens here: a box already inside [0, 1] lands inside
// [0, imageWidth] x [0, imageHeight].
func ScaleBBox(bbox images.Rect, imageHeight, imageWidth float32) images.Rect {
	return images.Rect{
		X1: bbox.X1 * imageWidth,
		Y1: bbox.Y1 * imageHeight,
		X2: bbox.X2 * imageWidth,
		Y2: bbox.Y2 * imageHeight,
	}
}

// ScaleCenter multiplies a normalized (y, x) point by the frame dimensions.
func ScaleCenter(center [2]float32, imageHeight, imageWidth float32) [2]float32 {
	return [2]float32{center[0] * imageHeight, center[1] * imageWidth}
}

// Rectangle returns the pixel box truncated to integer coordinates.
func (f Face) Rectangle() image.Rectangle {
	return f.BBox.ToRectangle()
}

// Record converts the face into its fixed-layout boundary representation.
func (f Face) Record() FaceRecord {
	return FaceRecord{
		BBox:    f.BBox.XYWH(),
		BBoxRaw: f.BBoxRaw.YXYX(),
		Center:  f.Center,
		Score:   f.Score,
		FrameH:  int32(f.FrameHeight),
		FrameW:  int32(f.FrameWidth),
	}
}

func (f Face) String() string {
	return fmt.Sprintf("Face (score %f): (%.2f, %.2f), (%.2f, %.2f) in %dx%d",
		f.Score, f.BBox.X1, f.BBox.Y1, f.BBox.X2, f.BBox.Y2, f.FrameWidth, f.FrameHeight)
}

// FaceRecord is the fixed-layout form of a Face used across process boundaries and on the wire.
type FaceRecord struct {
	// BBox is [x, y, width, height] in pixels.
	BBox [4]float32 `json:"bbox"`
	// BBoxRaw is [y_min, x_min, y_max, x_max] normalized to the model input.
	BBoxRaw [4]float32 `json:"bbox_raw"`
	// Center is [y, x] in pixels.
	Center [2]float32 `json:"center"`
	Score  float32    `json:"score"`
	FrameH int32      `json:"frame_h"`
	FrameW int32      `json:"frame_w"`
}
