// Package provider - Capability negotiation with face detection providers.
//
// A provider is any value implementing some of FaceDetector, LandmarkDetector and
// FaceReleaser. Callers Describe it once and check Supports before relying on an operation,
// whether the provider is linked in or loaded from a Go plugin with Open.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned when a provider lacks the requested capability.
var ErrUnsupported = errors.New("provider: capability not supported")

// Capability is a set of optional operations.
type Capability uint8

const (
	// CapDetectFaces is set for providers implementing FaceDetector.
	CapDetectFaces Capability = 1 << iota
	// CapDetectLandmarks is set for providers implementing LandmarkDetector.
	CapDetectLandmarks
	// CapFreeFaces is set for providers implementing FaceReleaser.
	CapFreeFaces
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapDetectFaces, "detect_faces"},
	{CapDetectLandmarks, "detect_landmarks"},
	{CapFreeFaces, "free_faces"},
}

func (c Capability) String() string {
	var names []string
	for _, n := range capabilityNames {
		if c&n.cap != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Landmark is a facial keypoint.
type Landmark struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// FaceDetector finds faces in a frame. The returned buffer belongs to the provider and is
// handed back through FaceReleaser when the provider has it.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame images.Frame) (*common.FaceBuffer, error)
}

// LandmarkDetector finds facial keypoints in a frame.
type LandmarkDetector interface {
	DetectLandmarks(ctx context.Context, frame images.Frame) ([]Landmark, error)
}

// FaceReleaser frees buffers returned by DetectFaces.
type FaceReleaser interface {
	FreeFaces(buf *common.FaceBuffer)
}

// Descriptor is a provider with its negotiated capabilities.
type Descriptor struct {
	Name         string
	Capabilities Capability
	impl         any
}

// Describe inspects p for the optional interfaces it implements.
func Describe(name string, p any) Descriptor {
	d := Descriptor{Name: name, impl: p}
	if _, ok := p.(FaceDetector); ok {
		d.Capabilities |= CapDetectFaces
	}
	if _, ok := p.(LandmarkDetector); ok {
		d.Capabilities |= CapDetectLandmarks
	}
	if _, ok := p.(FaceReleaser); ok {
		d.Capabilities |= CapFreeFaces
	}
	return d
}

// Supports reports whether every capability in c is present.
func (d Descriptor) Supports(c Capability) bool {
	return d.Capabilities&c == c
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Capabilities)
}

// DetectFaces calls the provider's DetectFaces.
func (d Descriptor) DetectFaces(ctx context.Context, frame images.Frame) (*common.FaceBuffer, error) {
	p, ok := d.impl.(FaceDetector)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "%s: %s", d.Name, CapDetectFaces)
	}
	return p.DetectFaces(ctx, frame)
}

// DetectLandmarks calls the provider's DetectLandmarks.
func (d Descriptor) DetectLandmarks(ctx context.Context, frame images.Frame) ([]Landmark, error) {
	p, ok := d.impl.(LandmarkDetector)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "%s: %s", d.Name, CapDetectLandmarks)
	}
	return p.DetectLandmarks(ctx, frame)
}

// FreeFaces returns buf to the provider. Without CapFreeFaces the buffer is released in place.
func (d Descriptor) FreeFaces(buf *common.FaceBuffer) {
	if buf == nil {
		return
	}
	if p, ok := d.impl.(FaceReleaser); ok {
		p.FreeFaces(buf)
		return
	}
	buf.Release()
}

// Faces detects faces and copies them out, releasing the provider's buffer on every path.
func (d Descriptor) Faces(ctx context.Context, frame images.Frame) ([]common.FaceRecord, error) {
	buf, err := d.DetectFaces(ctx, frame)
	if err != nil {
		return nil, err
	}
	defer d.FreeFaces(buf)
	return buf.Records(), nil
}
