// Package models - registry for models.
package models

import (
	"github.com/nvr-ai/visioncore/models/blazeface"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
)

// ErrUnsupportedModel is returned for a model name the registry does not know.
var ErrUnsupportedModel = errors.New("unsupported model")

// NewModel creates a new detection model instance based on the specified model name.
//
// Arguments:
//   - args: Configuration parameters specifying the model name and location.
//
// Returns:
//   - model.Model: A configured model instance.
//   - error: ErrUnsupportedModel for an unknown name, or the model's construction error.
//
// Example:
//
//	m, err := models.NewModel(model.NewModelArgs{
//	    Name: model.ModelNameBlazeFace,
//	    Path: "/models/blazeface.onnx",
//	})
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameBlazeFace, "":
		m, err := blazeface.NewModel(args)
		if err != nil {
			return nil, errors.Wrapf(err, "creating %s", model.ModelNameBlazeFace)
		}
		return m, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedModel, "%q", args.Name)
	}
}
