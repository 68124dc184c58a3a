package capture

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FrameFile is one numbered image in a replay directory.
type FrameFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the number parsed from a frame-N file name.
	Frame int
}

// ListFrames returns the frame-N images of dir in frame order.
//
// Arguments:
//   - dir: Directory holding frame-N.jpg, .jpeg, .png or .bmp files.
//
// Returns:
//   - []FrameFile: The frames, sorted by number.
//   - error: If dir cannot be read or an image name carries no frame number.
func ListFrames(dir string) ([]FrameFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var frames []FrameFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		switch strings.ToLower(ext) {
		case ".jpg", ".jpeg", ".png", ".bmp":
			n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSuffix(entry.Name(), ext), "frame-"))
			if err != nil {
				return nil, errors.Errorf("%s: image name has no frame-N number", entry.Name())
			}
			frames = append(frames, FrameFile{Path: filepath.Join(dir, entry.Name()), Frame: n})
		}
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})
	return frames, nil
}

// Replay feeds the images of a directory into a FrameBuffer at the configured frame interval.
type Replay struct {
	config Config
	files  []FrameFile
	logger *zap.Logger
}

// OpenReplay lists config.Directory.
func OpenReplay(config Config, logger *zap.Logger) (*Replay, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := ListFrames(config.Directory)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("%s holds no frames", config.Directory)
	}

	logger.Info("replay opened", zap.String("directory", config.Directory), zap.Int("frames", len(files)))
	return &Replay{config: config, files: files, logger: logger}, nil
}

// Run publishes every frame in order, then waits for ctx unless Loop is set.
func (r *Replay) Run(ctx context.Context, buf *FrameBuffer) error {
	interval := r.config.FrameInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, f := range r.files {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			frame, err := ReadImage(f.Path)
			if err != nil {
				return err
			}
			buf.Publish(frame)
		}

		if !r.config.Loop {
			break
		}
	}

	r.logger.Info("replay finished", zap.Int("frames", len(r.files)))
	<-ctx.Done()
	return nil
}

// Close is a no-op.
func (r *Replay) Close() error {
	return nil
}
