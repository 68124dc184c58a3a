package capture

import (
	"image"
	"image/color"

	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ReadImage loads an image file as an RGB frame.
func ReadImage(path string) (images.Frame, error) {
	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return images.Frame{}, errors.Errorf("cannot read image %s", path)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)

	return images.Frame{Data: rgb.ToBytes(), Width: rgb.Cols(), Height: rgb.Rows()}, nil
}

// WriteAnnotated draws the face boxes onto frame and writes it to path.
func WriteAnnotated(path string, frame images.Frame, faces []common.FaceRecord) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	rgb, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return errors.Wrap(err, "wrapping frame")
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	green := color.RGBA{0, 255, 0, 0}
	for _, f := range faces {
		x, y, w, h := int(f.BBox[0]), int(f.BBox[1]), int(f.BBox[2]), int(f.BBox[3])
		gocv.Rectangle(&bgr, image.Rect(x, y, x+w, y+h), green, 2)
		center := image.Pt(int(f.Center[1]), int(f.Center[0]))
		gocv.Circle(&bgr, center, 2, green, -1)
	}

	if !gocv.IMWrite(path, bgr) {
		return errors.Errorf("cannot write image %s", path)
	}
	return nil
}
