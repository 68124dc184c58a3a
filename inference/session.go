package inference

import (
	"context"
	"sync"
	"time"

	"github.com/nvr-ai/visioncore/models/blazeface"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// SessionConfig describes an onnxruntime session for a BlazeFace export.
type SessionConfig struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string `json:"model_path" yaml:"model_path" mapstructure:"model_path"`
	// LibraryPath is the onnxruntime shared library. Empty uses DefaultLibraryPath.
	LibraryPath string `json:"library_path" yaml:"library_path" mapstructure:"library_path"`
	// InputName is the name of the image input.
	InputName string `json:"input_name" yaml:"input_name" mapstructure:"input_name"`
	// OutputNames are the regression and classification outputs, in that order.
	OutputNames []string `json:"output_names" yaml:"output_names" mapstructure:"output_names"`
	// IntraOpThreads bounds the threads used inside a node. 0 lets onnxruntime decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads" mapstructure:"intra_op_threads"`
	// Backend selects the execution provider.
	Backend Backend `json:"backend" yaml:"backend" mapstructure:"backend"`
	// ProviderOptions are passed to the execution provider as is.
	ProviderOptions map[string]string `json:"provider_options" yaml:"provider_options" mapstructure:"provider_options"`
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.InputName == "" {
		c.InputName = blazeface.DefaultInputName
	}
	if len(c.OutputNames) == 0 {
		c.OutputNames = []string{blazeface.DefaultRegressorsName, blazeface.DefaultClassificatorsName}
	}
	if c.Backend == "" {
		c.Backend = BackendCPU
	}
	return c
}

// Session runs a BlazeFace model through onnxruntime with preallocated tensors.
//
// The input is NHWC 1x128x128x3. The outputs are the (1, 896, 16) regressors and the
// (1, 896, 1) classificators.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	deltas  *ort.Tensor[float32]
	scores  *ort.Tensor[float32]
	logger  *zap.Logger
}

// NewSession loads the model and binds its tensors.
//
// Arguments:
//   - config: The session configuration.
//   - logger: The logger for session events. Nil disables logging.
//
// Returns:
//   - *Session: The session, to be closed by the caller.
//   - error: An error if the runtime, tensors or model cannot be set up.
func NewSession(config SessionConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.withDefaults()
	if len(config.OutputNames) != 2 {
		return nil, errors.Errorf("expected 2 output names, got %d", len(config.OutputNames))
	}

	if err := initEnvironment(config.LibraryPath); err != nil {
		return nil, err
	}

	s := &Session{logger: logger}
	var err error

	s.input, err = ort.NewEmptyTensor[float32](
		ort.NewShape(1, blazeface.InputSize, blazeface.InputSize, 3))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	s.deltas, err = ort.NewEmptyTensor[float32](
		ort.NewShape(1, blazeface.NumAnchors, blazeface.DeltaStride))
	if err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "creating regressors tensor")
	}
	s.scores, err = ort.NewEmptyTensor[float32](ort.NewShape(1, blazeface.NumAnchors, 1))
	if err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "creating classificators tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "creating session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "setting intra-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "setting graph optimization level")
	}
	if err := config.Backend.apply(options, config.ProviderOptions); err != nil {
		s.destroy()
		return nil, err
	}

	s.session, err = ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		config.OutputNames,
		[]ort.Value{s.input},
		[]ort.Value{s.deltas, s.scores},
		options,
	)
	if err != nil {
		s.destroy()
		return nil, errors.Wrapf(err, "loading model %s", config.ModelPath)
	}

	logger.Info("inference session ready",
		zap.String("model", config.ModelPath),
		zap.String("backend", string(config.Backend)),
		zap.Int("intra_op_threads", config.IntraOpThreads))

	return s, nil
}

// Run copies input into the session, runs the model and copies the outputs out.
func (s *Session) Run(ctx context.Context, input *tensor.Dense) (model.Outputs, error) {
	if err := ctx.Err(); err != nil {
		return model.Outputs{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return model.Outputs{}, ErrClosed
	}

	src, ok := input.Data().([]float32)
	dst := s.input.GetData()
	if !ok || len(src) != len(dst) {
		return model.Outputs{}, errors.Wrapf(ErrInputShape, "got %v, want %v", input.Shape(), s.input.GetShape())
	}
	copy(dst, src)

	start := time.Now()
	if err := s.session.Run(); err != nil {
		return model.Outputs{}, errors.Wrap(err, "running session")
	}
	s.logger.Debug("inference", zap.Duration("took", time.Since(start)))

	out := model.Outputs{
		Deltas: make([]float32, len(s.deltas.GetData())),
		Scores: make([]float32, len(s.scores.GetData())),
	}
	copy(out.Deltas, s.deltas.GetData())
	copy(out.Scores, s.scores.GetData())
	return out, nil
}

// Close releases the native session and its tensors. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroy()
}

func (s *Session) destroy() error {
	var err error
	if s.session != nil {
		err = errors.Wrap(s.session.Destroy(), "destroying session")
		s.session = nil
	}
	for _, t := range []**ort.Tensor[float32]{&s.input, &s.deltas, &s.scores} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
	return err
}
