package capture

import (
	"context"
	"time"

	"github.com/nvr-ai/visioncore/images"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Config selects the capture source and pacing.
type Config struct {
	// DeviceID is the camera index, used when Path is empty.
	DeviceID int `json:"device_id" yaml:"device_id" mapstructure:"device_id"`
	// Path is a video file or stream URL.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
	// Directory replays frame-N image files instead of opening a video source.
	Directory string `json:"directory" yaml:"directory" mapstructure:"directory"`
	// Loop restarts a directory replay from its first frame.
	Loop bool `json:"loop" yaml:"loop" mapstructure:"loop"`
	// FrameInterval is the pause between reads.
	FrameInterval time.Duration `json:"frame_interval" yaml:"frame_interval" mapstructure:"frame_interval"`
	// Warmup is how long Run waits after opening before the first read.
	Warmup time.Duration `json:"warmup" yaml:"warmup" mapstructure:"warmup"`
}

// DefaultConfig reads camera 0 at about 30 frames per second.
func DefaultConfig() Config {
	return Config{
		DeviceID:      0,
		FrameInterval: 33 * time.Millisecond,
		Warmup:        time.Second,
	}
}

// Source produces frames into a FrameBuffer until its context ends.
type Source interface {
	Run(ctx context.Context, buf *FrameBuffer) error
	Close() error
}

// Open returns a directory replay when config.Directory is set, a camera otherwise.
func Open(config Config, logger *zap.Logger) (Source, error) {
	if config.Directory != "" {
		r, err := OpenReplay(config, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	c, err := OpenCamera(config, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Camera reads RGB frames from a gocv video source into a FrameBuffer.
type Camera struct {
	config  Config
	capture *gocv.VideoCapture
	logger  *zap.Logger
}

// OpenCamera opens the configured source.
func OpenCamera(config Config, logger *zap.Logger) (*Camera, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if config.Path != "" {
		vc, err = gocv.OpenVideoCapture(config.Path)
	} else {
		vc, err = gocv.OpenVideoCapture(config.DeviceID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening video capture")
	}

	logger.Info("capture opened", zap.Int("device_id", config.DeviceID), zap.String("path", config.Path))
	return &Camera{config: config, capture: vc, logger: logger}, nil
}

// Run publishes frames into buf until ctx ends or the source stops.
func (c *Camera) Run(ctx context.Context, buf *FrameBuffer) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(c.config.Warmup):
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	rgb := gocv.NewMat()
	defer rgb.Close()

	interval := c.config.FrameInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("capture stopped", zap.Uint64("dropped_frames", buf.Drops()))
			return nil
		case <-ticker.C:
		}

		if ok := c.capture.Read(&bgr); !ok {
			return errors.New("capture source closed")
		}
		if bgr.Empty() {
			continue
		}

		gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)
		buf.Publish(images.Frame{Data: rgb.ToBytes(), Width: rgb.Cols(), Height: rgb.Rows()})
	}
}

// Close releases the capture device.
func (c *Camera) Close() error {
	return c.capture.Close()
}
