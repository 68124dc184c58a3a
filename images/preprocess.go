package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// SquarePadding describes how a frame is centered on a square canvas.
type SquarePadding struct {
	// Side is the edge length of the square canvas.
	Side int
	// OffsetX is the number of padding columns left of the frame.
	OffsetX int
	// OffsetY is the number of padding rows above the frame.
	OffsetY int
}

// PaddingFor returns the centered square padding for a width x height frame.
func PaddingFor(width, height int) SquarePadding {
	side := max(width, height)
	return SquarePadding{
		Side:    side,
		OffsetX: (side - width) / 2,
		OffsetY: (side - height) / 2,
	}
}

// PadSquare pastes the frame into the center of a black square canvas whose side is the
// frame's longer edge.
//
// Arguments:
//   - f: The frame to pad.
//
// Returns:
//   - *image.RGBA: The padded canvas.
//   - SquarePadding: Where the frame sits on the canvas.
//   - error: ErrInvalidFrame if the frame is malformed.
func PadSquare(f Frame) (*image.RGBA, SquarePadding, error) {
	src, err := f.Image()
	if err != nil {
		return nil, SquarePadding{}, err
	}

	pad := PaddingFor(f.Width, f.Height)
	canvas := image.NewRGBA(image.Rect(0, 0, pad.Side, pad.Side))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	dst := image.Rect(pad.OffsetX, pad.OffsetY, pad.OffsetX+f.Width, pad.OffsetY+f.Height)
	draw.Draw(canvas, dst, src, image.Point{}, draw.Src)

	return canvas, pad, nil
}

// Preprocess turns a frame into the model's input tensor.
//
// Order of operations:
//  1. Center the frame on a square canvas so the aspect ratio survives the resize.
//  2. Resize the canvas to size x size with bilinear interpolation.
//  3. Divide every 8-bit channel sample by 255.
//
// The result is a float32 tensor of shape (1, size, size, 3), channels last.
//
// Arguments:
//   - f: The source frame.
//   - size: The model input edge length (128 for BlazeFace).
//
// Returns:
//   - *tensor.Dense: The normalized input tensor.
//   - error: An error if the frame is malformed or size is not positive.
func Preprocess(f Frame, size int) (*tensor.Dense, error) {
	if size <= 0 {
		return nil, errors.Errorf("input size must be positive, got %d", size)
	}

	padded, _, err := PadSquare(f)
	if err != nil {
		return nil, errors.Wrap(err, "padding frame")
	}

	resized := resize.Resize(uint(size), uint(size), padded, resize.Bilinear)
	data := make([]float32, size*size*Channels)
	Normalize(resized, data)

	return tensor.New(
		tensor.WithShape(1, size, size, Channels),
		tensor.WithBacking(data),
	), nil
}

// Normalize writes img's RGB samples scaled to [0, 1] into dst in HWC order.
//
// dst must hold at least width*height*3 values.
func Normalize(img image.Image, dst []float32) {
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst[i+0] = float32(r>>8) / 255.0
			dst[i+1] = float32(g>>8) / 255.0
			dst[i+2] = float32(bl>>8) / 255.0
			i += Channels
		}
	}
}
