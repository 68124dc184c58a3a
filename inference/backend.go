package inference

import (
	"strconv"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend selects the onnxruntime execution provider.
type Backend string

const (
	// BackendCPU uses the default CPU execution provider.
	BackendCPU Backend = "cpu"
	// BackendCoreML uses Apple CoreML.
	BackendCoreML Backend = "coreml"
	// BackendCUDA uses NVIDIA CUDA.
	BackendCUDA Backend = "cuda"
	// BackendOpenVINO uses Intel OpenVINO.
	BackendOpenVINO Backend = "openvino"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendCPU, BackendCoreML, BackendCUDA, BackendOpenVINO}

// ErrUnknownBackend is returned for a backend name not in Backends.
var ErrUnknownBackend = errors.New("inference: unknown backend")

// ParseBackend validates a backend name. An empty name selects BackendCPU.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return BackendCPU, nil
	}
	for _, b := range Backends {
		if string(b) == name {
			return b, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownBackend, "%q", name)
}

// apply appends the execution provider for b to the session options.
//
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
func (b Backend) apply(options *ort.SessionOptions, providerOptions map[string]string) error {
	switch b {
	case BackendCPU, "":
		return nil
	case BackendCoreML:
		var flags uint64
		if v, ok := providerOptions["flags"]; ok {
			parsed, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return errors.Wrap(err, "parsing coreml flags")
			}
			flags = parsed
		}
		return errors.Wrap(options.AppendExecutionProviderCoreML(uint32(flags)), "enabling CoreML")
	case BackendOpenVINO:
		return errors.Wrap(options.AppendExecutionProviderOpenVINO(providerOptions), "enabling OpenVINO")
	case BackendCUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "creating CUDA options")
		}
		defer cuda.Destroy()
		if len(providerOptions) > 0 {
			if err := cuda.Update(providerOptions); err != nil {
				return errors.Wrap(err, "updating CUDA options")
			}
		}
		return errors.Wrap(options.AppendExecutionProviderCUDA(cuda), "enabling CUDA")
	default:
		return errors.Wrapf(ErrUnknownBackend, "%q", b)
	}
}
