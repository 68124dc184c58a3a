// Package config - Application configuration loaded from file and environment.
package config

import (
	"strings"

	"github.com/nvr-ai/visioncore/capture"
	"github.com/nvr-ai/visioncore/inference"
	"github.com/nvr-ai/visioncore/logger"
	"github.com/nvr-ai/visioncore/models/blazeface"
	"github.com/nvr-ai/visioncore/models/postprocess"
	"github.com/nvr-ai/visioncore/profiler"
	"github.com/nvr-ai/visioncore/publish"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. VISIONCORE_DETECTION_IOU_THRESHOLD.
const EnvPrefix = "VISIONCORE"

// Detection holds the decode thresholds.
type Detection struct {
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	IoUThreshold        float32 `json:"iou_threshold" yaml:"iou_threshold" mapstructure:"iou_threshold"`
	MaxDetections       int     `json:"max_detections" yaml:"max_detections" mapstructure:"max_detections"`
}

// NMS returns the suppression settings for d.
func (d Detection) NMS() *postprocess.NMSConfig {
	return &postprocess.NMSConfig{IoUThreshold: d.IoUThreshold, MaxDetections: d.MaxDetections}
}

// Config is the full application configuration.
type Config struct {
	Model     inference.SessionConfig `json:"model" yaml:"model" mapstructure:"model"`
	Detection Detection               `json:"detection" yaml:"detection" mapstructure:"detection"`
	Capture   capture.Config          `json:"capture" yaml:"capture" mapstructure:"capture"`
	Publish   publish.Config          `json:"publish" yaml:"publish" mapstructure:"publish"`
	Log       logger.Config           `json:"log" yaml:"log" mapstructure:"log"`
	Profile   profiler.Options        `json:"profile" yaml:"profile" mapstructure:"profile"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Model: inference.SessionConfig{
			ModelPath:   "models/blazeface.onnx",
			InputName:   blazeface.DefaultInputName,
			OutputNames: []string{blazeface.DefaultRegressorsName, blazeface.DefaultClassificatorsName},
			Backend:     inference.BackendCPU,
		},
		Detection: Detection{
			ConfidenceThreshold: blazeface.DefaultConfidenceThreshold,
			IoUThreshold:        postprocess.DefaultIoUThreshold,
		},
		Capture: capture.DefaultConfig(),
		Publish: publish.DefaultConfig(),
		Log:     logger.DefaultConfig(),
		Profile: profiler.DefaultOptions(),
	}
}

// setDefaults registers every default so that environment overrides apply to all keys.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("model.model_path", d.Model.ModelPath)
	v.SetDefault("model.library_path", d.Model.LibraryPath)
	v.SetDefault("model.input_name", d.Model.InputName)
	v.SetDefault("model.output_names", d.Model.OutputNames)
	v.SetDefault("model.intra_op_threads", d.Model.IntraOpThreads)
	v.SetDefault("model.backend", string(d.Model.Backend))

	v.SetDefault("detection.confidence_threshold", d.Detection.ConfidenceThreshold)
	v.SetDefault("detection.iou_threshold", d.Detection.IoUThreshold)
	v.SetDefault("detection.max_detections", d.Detection.MaxDetections)

	v.SetDefault("capture.device_id", d.Capture.DeviceID)
	v.SetDefault("capture.path", d.Capture.Path)
	v.SetDefault("capture.directory", d.Capture.Directory)
	v.SetDefault("capture.loop", d.Capture.Loop)
	v.SetDefault("capture.frame_interval", d.Capture.FrameInterval)
	v.SetDefault("capture.warmup", d.Capture.Warmup)

	v.SetDefault("publish.backend", string(d.Publish.Backend))
	v.SetDefault("publish.topic", d.Publish.Topic)
	v.SetDefault("publish.broker", d.Publish.Broker)
	v.SetDefault("publish.client_id", d.Publish.ClientID)
	v.SetDefault("publish.qos", d.Publish.QoS)
	v.SetDefault("publish.redis_addr", d.Publish.RedisAddr)
	v.SetDefault("publish.redis_password", d.Publish.RedisPassword)
	v.SetDefault("publish.redis_db", d.Publish.RedisDB)
	v.SetDefault("publish.timeout", d.Publish.Timeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.console", d.Log.Console)

	v.SetDefault("profile.report_interval", d.Profile.ReportInterval)
	v.SetDefault("profile.max_samples", d.Profile.MaxSamples)
}

// Load reads path (YAML, optional) over the defaults, then applies VISIONCORE_* variables.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	if c.Detection.ConfidenceThreshold <= 0 || c.Detection.ConfidenceThreshold > 1 {
		return errors.Errorf("detection.confidence_threshold %v outside (0, 1]; 0 would select the model default",
			c.Detection.ConfidenceThreshold)
	}
	if c.Detection.IoUThreshold < 0 || c.Detection.IoUThreshold > 1 {
		return errors.Errorf("detection.iou_threshold %v outside [0, 1]", c.Detection.IoUThreshold)
	}
	if c.Detection.MaxDetections < 0 {
		return errors.Errorf("detection.max_detections %d is negative", c.Detection.MaxDetections)
	}
	if _, err := inference.ParseBackend(string(c.Model.Backend)); err != nil {
		return err
	}
	if c.Capture.FrameInterval < 0 || c.Capture.Warmup < 0 {
		return errors.New("capture durations must not be negative")
	}
	if c.Profile.ReportInterval < 0 || c.Profile.MaxSamples < 0 {
		return errors.New("profile settings must not be negative")
	}
	switch c.Publish.Backend {
	case publish.BackendLog, publish.BackendMQTT, publish.BackendRedis:
	default:
		return errors.Wrapf(publish.ErrUnknownBackend, "%q", c.Publish.Backend)
	}
	if c.Publish.QoS > 2 {
		return errors.Errorf("publish.qos %d must be 0, 1 or 2", c.Publish.QoS)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

