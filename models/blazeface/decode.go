package blazeface

import "github.com/nvr-ai/visioncore/images"

// DecodeBox regresses one anchor into a normalized box clamped to [0, 1].
//
// The offsets in delta[0:4] are (dy, dx, dh, dw) in input pixels. Center offsets scale with the
// anchor size, while height and width are taken directly from dh and dw. delta[4:] holds
// keypoints and is not read.
//
// Arguments:
//   - anchor: The prior the delta is relative to.
//   - delta: The regression row, at least 4 values.
//   - inputSize: The side of the model input in pixels.
//
// Returns:
//   - The decoded box.
func DecodeBox(anchor Anchor, delta []float32, inputSize int) images.Rect {
	size := float32(inputSize)
	dy, dx := delta[0]/size, delta[1]/size
	h, w := delta[2]/size, delta[3]/size

	cy := anchor.CenterY + dy*anchor.Height
	cx := anchor.CenterX + dx*anchor.Width

	return images.Rect{
		X1: clamp01(cx - w/2),
		Y1: clamp01(cy - h/2),
		X2: clamp01(cx + w/2),
		Y2: clamp01(cy + h/2),
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
