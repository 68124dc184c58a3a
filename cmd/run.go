package cmd

import (
	"context"

	"github.com/nvr-ai/visioncore/capture"
	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/config"
	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/profiler"
	"github.com/nvr-ai/visioncore/publish"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture frames, detect faces and publish their positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runPipeline(cmd.Context(), cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

type faceDetector interface {
	Detect(ctx context.Context, frame images.Frame) ([]common.Face, error)
}

func runPipeline(ctx context.Context, c config.Config, log *zap.Logger) error {
	det, err := buildDetector(c, log)
	if err != nil {
		return err
	}
	defer closeLogged("detector", det.Close, log)()

	pub, err := publish.New(ctx, c.Publish, log.Named("publish"))
	if err != nil {
		return err
	}
	defer pub.Close()

	src, err := capture.Open(c.Capture, log.Named("capture"))
	if err != nil {
		return err
	}
	defer src.Close()

	prof := profiler.New(c.Profile, log.Named("profile"))
	prof.AddCollector(det)

	frames := capture.NewFrameBuffer()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return src.Run(ctx, frames) })
	g.Go(func() error { return prof.Run(ctx) })
	g.Go(func() error { return process(ctx, frames, det, pub, prof, log) })
	err = g.Wait()

	stats := det.Stats()
	log.Info("stopped",
		zap.Int64("frames", stats.Frames),
		zap.Int64("faces", stats.Faces),
		zap.Int64("failures", stats.Failures),
		zap.Uint64("dropped_frames", frames.Drops()))
	return err
}

// process detects faces in every new frame and publishes each one until ctx ends.
// A frame that fails is logged and skipped.
func process(ctx context.Context, frames *capture.FrameBuffer, det faceDetector, pub publish.Publisher, prof *profiler.Profiler, log *zap.Logger) error {
	var seq uint64
	for {
		frame, next, err := frames.Next(ctx, seq)
		if err != nil {
			return nil
		}
		seq = next

		stop := prof.StartOperation("detect")
		faces, err := det.Detect(ctx, frame)
		stop()
		if err != nil {
			log.Warn("frame skipped", zap.Uint64("seq", seq), zap.Error(err))
			continue
		}
		log.Debug("frame processed", zap.Uint64("seq", seq), zap.Int("faces", len(faces)))

		stop = prof.StartOperation("publish")
		for _, f := range faces {
			if err := pub.Publish(ctx, f); err != nil {
				log.Warn("publish failed", zap.Error(err))
			}
		}
		stop()
		prof.RecordMetric("dropped_frames", float64(frames.Drops()))
	}
}
