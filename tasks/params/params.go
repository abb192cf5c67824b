// Package params resolves the final argument set for a task invocation by
// merging declared defaults, layered context values, and explicit call-site
// arguments.
package params

import (
	"maps"

	"github.com/haydenflinner/magicinvoke/errors"
)

// Values is an ordered-independent mapping of parameter name to value.
type Values map[string]any

// Clone returns a shallow copy of the values.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// Layer is one source of default parameter values. Layers are applied in the
// order given, later layers overriding earlier ones, and all layers sit below
// explicit call-site arguments in precedence.
type Layer map[string]any

// Spec declares the parameters a task accepts.
//
// Names lists every declared parameter. A name absent from Defaults has no
// declared default and must be supplied by a layer or an explicit argument.
type Spec struct {
	Names    []string
	Defaults Values
}

// Resolve merges defaults, context layers, and explicit arguments into the
// final argument set for one invocation.
//
// Precedence, lowest to highest: declared default < context layers (in the
// order given, later wins) < explicit arguments. A declared parameter that
// resolves to no value fails with a MissingParameterError. An explicit
// argument for an undeclared parameter fails rather than being silently
// dropped. No input mapping is mutated.
func Resolve(taskName string, spec Spec, layers []Layer, explicit Values) (Values, error) {
	declared := make(map[string]bool, len(spec.Names))
	for _, name := range spec.Names {
		declared[name] = true
	}

	for name := range explicit {
		if !declared[name] {
			return nil, errors.NewUnknownParameterError(taskName, name)
		}
	}

	resolved := make(Values, len(spec.Names))
	for _, name := range spec.Names {
		value, ok := resolveOne(name, spec.Defaults, layers, explicit)
		if !ok {
			return nil, errors.NewMissingParameterError(taskName, name)
		}
		resolved[name] = value
	}

	return resolved, nil
}

func resolveOne(name string, defaults Values, layers []Layer, explicit Values) (any, bool) {
	if value, ok := explicit[name]; ok {
		return value, true
	}

	// Later layers override earlier ones, so scan back to front.
	for i := len(layers) - 1; i >= 0; i-- {
		if value, ok := layers[i][name]; ok {
			return value, true
		}
	}

	if value, ok := defaults[name]; ok {
		return value, true
	}

	return nil, false
}
