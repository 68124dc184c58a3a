package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/nvr-ai/visioncore/capture"
	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/provider"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type detectOptions struct {
	imagePath  string
	outputPath string
	pluginPath string
}

var detectOpts detectOptions

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect faces in an image and print them as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDetect(cmd.Context(), cmd.OutOrStdout(), detectOpts)
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectOpts.imagePath, "image", "i", "", "Image to analyze")
	detectCmd.Flags().StringVarP(&detectOpts.outputPath, "output", "o", "", "Write the image with face boxes drawn to this path")
	detectCmd.Flags().StringVar(&detectOpts.pluginPath, "plugin", "", "Use the provider exported by this Go plugin instead of the built-in model")
	_ = detectCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(ctx context.Context, out io.Writer, opts detectOptions) error {
	frame, err := capture.ReadImage(opts.imagePath)
	if err != nil {
		return err
	}

	desc, closeProvider, err := openProvider(opts.pluginPath)
	if err != nil {
		return err
	}
	defer closeProvider()

	records, err := detectRecords(ctx, desc, frame)
	if err != nil {
		return err
	}
	log.Info("detected", zap.String("provider", desc.String()), zap.Int("faces", len(records)))

	if opts.outputPath != "" {
		if err := capture.WriteAnnotated(opts.outputPath, frame, records); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func openProvider(pluginPath string) (provider.Descriptor, func(), error) {
	if pluginPath != "" {
		desc, err := provider.Open(pluginPath)
		return desc, func() {}, err
	}

	det, err := buildDetector(cfg, log)
	if err != nil {
		return provider.Descriptor{}, nil, err
	}
	return provider.Describe("blazeface", det), closeLogged("detector", det.Close, log), nil
}

func detectRecords(ctx context.Context, desc provider.Descriptor, frame images.Frame) ([]common.FaceRecord, error) {
	if !desc.Supports(provider.CapDetectFaces) {
		return nil, errors.Wrapf(provider.ErrUnsupported, "%s cannot detect faces", desc)
	}
	return desc.Faces(ctx, frame)
}
