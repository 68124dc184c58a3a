package inference

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv overrides the default onnxruntime shared library location.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// DefaultLibraryPath returns the bundled onnxruntime shared library for the current platform.
func DefaultLibraryPath() string {
	if p := os.Getenv(LibraryPathEnv); p != "" {
		return p
	}
	return libraryPathFor(runtime.GOOS, runtime.GOARCH)
}

func libraryPathFor(goos, goarch string) string {
	switch goos {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

var (
	envOnce sync.Once
	envPath string
	envErr  error
)

// initEnvironment loads the shared library and initializes onnxruntime once per process.
//
// Later calls with a different path fail, since the library cannot be swapped once loaded.
func initEnvironment(libraryPath string) error {
	if libraryPath == "" {
		libraryPath = DefaultLibraryPath()
	}
	envOnce.Do(func() {
		envPath = libraryPath
		if _, err := os.Stat(libraryPath); err != nil {
			envErr = errors.Wrapf(err, "onnxruntime library not found at %s", libraryPath)
			return
		}
		ort.SetSharedLibraryPath(libraryPath)
		envErr = errors.Wrap(ort.InitializeEnvironment(), "initializing onnxruntime environment")
	})
	if envErr != nil {
		return envErr
	}
	if libraryPath != envPath {
		return errors.Errorf("onnxruntime already initialized from %s", envPath)
	}
	return nil
}
