package provider

import (
	"path/filepath"
	"plugin"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Symbol is the name a plugin must export its provider under.
const Symbol = "Provider"

// Open loads a Go plugin and describes the provider it exports.
//
// The Symbol may be a func() any constructor, or a variable holding a pointer or an interface
// value, e.g. var Provider = &impl{} or var Provider provider.FaceDetector = impl{}.
func Open(path string) (Descriptor, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "opening plugin %s", path)
	}
	sym, err := p.Lookup(Symbol)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "plugin %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Describe(name, resolve(sym)), nil
}

// resolve unwraps what plugin.Lookup returns for the supported symbol shapes.
// Lookup hands back variables by address, so **T and *Interface lose one level here.
func resolve(sym any) any {
	switch s := sym.(type) {
	case func() any:
		return s()
	case *any:
		return *s
	}

	rv := reflect.ValueOf(sym)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		switch rv.Elem().Kind() {
		case reflect.Ptr, reflect.Interface:
			if !rv.Elem().IsNil() {
				return rv.Elem().Interface()
			}
		}
	}
	return sym
}
