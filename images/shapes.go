// Package images - Image and geometry primitives shared by the detection pipeline.
package images

import "image"

// Rect is an axis-aligned box with float32 edges.
//
// Boxes coming out of the model are normalized to [0, 1]; boxes handed to callers are in
// pixels. Rect does not care which space it lives in.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// RectFromYXYX builds a Rect from the [y_min, x_min, y_max, x_max] layout used by SSD style
// detectors.
func RectFromYXYX(b [4]float32) Rect {
	return Rect{X1: b[1], Y1: b[0], X2: b[3], Y2: b[2]}
}

// YXYX returns the box in [y_min, x_min, y_max, x_max] order.
func (r Rect) YXYX() [4]float32 {
	return [4]float32{r.Y1, r.X1, r.Y2, r.X2}
}

// XYWH returns the box as [x, y, width, height].
func (r Rect) XYWH() [4]float32 {
	return [4]float32{r.X1, r.Y1, r.X2 - r.X1, r.Y2 - r.Y1}
}

// Width of the box. Negative for inverted boxes.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height of the box. Negative for inverted boxes.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the box area, or 0 when the box is empty or inverted.
func (r Rect) Area() float32 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the box center as (y, x).
func (r Rect) Center() [2]float32 {
	return [2]float32{(r.Y1 + r.Y2) / 2, (r.X1 + r.X2) / 2}
}

// ToRectangle truncates the edges to integer pixels.
//
// This loses the fractional part of each edge, so it is only meant for drawing and cropping,
// never for overlap math.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2)).Canon()
}

// CalculateIoU returns the Intersection over Union of two boxes, a value in [0, 1].
//
//	IoU = Area of Intersection / Area of Union
//
// The intersection starts at the larger of the two top-left corners and ends at the smaller
// of the two bottom-right corners. When the overlap width or height is zero or negative the
// boxes do not overlap and the result is 0 straight away. This also covers zero-area and
// inverted boxes, so degenerate geometry never reaches the division.
//
// The union uses inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Arguments:
//   - r: The first box.
//   - o: The other box.
//
// Returns:
//   - float32: The IoU score, 0 when the boxes do not overlap.
//
// Example:
//
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	b := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iou := CalculateIoU(a, b) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0
	}

	return interArea / unionArea
}
