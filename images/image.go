// Package images - Frame definition for processing utilities.
package images

import (
	"image"

	"github.com/pkg/errors"
)

// Channels is the number of interleaved samples per pixel in a Frame.
const Channels = 3

// ErrInvalidFrame is returned when a frame's buffer does not match its dimensions.
var ErrInvalidFrame = errors.New("invalid frame")

// Frame is a borrowed view of a packed RGB image.
//
// Data holds Width*Height*3 bytes, row-major, no padding between rows. A Frame does not own
// Data: whoever produced it decides how long it stays valid, so consumers copy what they keep.
type Frame struct {
	// The packed RGB samples of the frame.
	Data []byte `json:"-" yaml:"-"`
	// The width of the frame in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the frame in pixels.
	Height int `json:"height" yaml:"height"`
}

// Validate checks the frame's buffer against its dimensions.
//
// Returns:
//   - error: ErrInvalidFrame wrapped with the mismatch, nil if the frame is usable.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Wrapf(ErrInvalidFrame, "dimensions %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * Channels; len(f.Data) != want {
		return errors.Wrapf(ErrInvalidFrame, "buffer holds %d bytes, %dx%d RGB needs %d",
			len(f.Data), f.Width, f.Height, want)
	}
	return nil
}

// Clone returns a frame backed by its own copy of the pixel data.
func (f Frame) Clone() Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return Frame{Data: data, Width: f.Width, Height: f.Height}
}

// Image wraps the frame in an image.RGBA. The pixel data is copied.
//
// Returns:
//   - *image.RGBA: The frame as an opaque RGBA image.
//   - error: ErrInvalidFrame if the frame is malformed.
func (f Frame) Image() (*image.RGBA, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Data); i, j = i+Channels, j+4 {
		img.Pix[j+0] = f.Data[i+0]
		img.Pix[j+1] = f.Data[i+1]
		img.Pix[j+2] = f.Data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// FrameFromImage packs any image.Image into an RGB frame.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	data := make([]byte, 0, b.Dx()*b.Dy()*Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data = append(data, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return Frame{Data: data, Width: b.Dx(), Height: b.Dy()}
}
