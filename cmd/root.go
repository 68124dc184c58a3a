// Package cmd - visioncore command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/visioncore/config"
	"github.com/nvr-ai/visioncore/detector"
	"github.com/nvr-ai/visioncore/inference"
	"github.com/nvr-ai/visioncore/logger"
	"github.com/nvr-ai/visioncore/models"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the application version.
const Version = "0.1.0"

var (
	configPath string
	cfg        config.Config
	log        = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     "visioncore",
	Short:   "BlazeFace face detection and position publishing",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if log, err = logger.New(cfg.Log); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults and VISIONCORE_* variables apply)")
}

// closeLogged returns a func that closes a resource and logs the error, for defer.
func closeLogged(name string, close func(context.Context) error, log *zap.Logger) func() {
	return func() {
		if err := close(context.Background()); err != nil {
			log.Warn("close failed", zap.String("resource", name), zap.Error(err))
		}
	}
}

// buildDetector loads the model and wires it to an exclusive onnxruntime session.
func buildDetector(c config.Config, log *zap.Logger) (*detector.Detector, error) {
	m, err := models.NewModel(model.NewModelArgs{
		Name:                model.ModelNameBlazeFace,
		Path:                c.Model.ModelPath,
		ConfidenceThreshold: c.Detection.ConfidenceThreshold,
		NMS:                 c.Detection.NMS(),
		Inputs:              []string{c.Model.InputName},
		Outputs:             c.Model.OutputNames,
	})
	if err != nil {
		return nil, err
	}

	session, err := inference.NewSession(c.Model, log.Named("inference"))
	if err != nil {
		return nil, errors.Wrap(err, "starting inference session")
	}

	return detector.New(m, inference.NewExclusive(session), log.Named("detector")), nil
}
