// Package tasks defines the unit of work wrapped for caching: a named task
// with declared parameters, declared file dependencies, and a body.
package tasks

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

// Handler is the body of a task. It receives the fully resolved argument set
// and returns a serializable payload; the payload is what gets cached.
type Handler interface {
	Run(ctx context.Context, args params.Values) (json.RawMessage, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, args params.Values) (json.RawMessage, error)

func (f HandlerFunc) Run(ctx context.Context, args params.Values) (json.RawMessage, error) {
	return f(ctx, args)
}

// Task is a named unit of work with declared parameters, optionally wrapped
// for caching. Name is the cache-namespace key and must be stable across
// runs.
//
// InputParams and OutputParams name parameters whose resolved values are file
// paths (a single string, or a list of strings). Declaring them here replaces
// runtime signature sniffing: the dependency spec travels with the task.
type Task struct {
	Name string
	Spec params.Spec

	InputParams  []string
	OutputParams []string

	Handler Handler
}

// InputPaths extracts the declared input paths from a resolved argument set,
// resolved to absolute paths.
func (t *Task) InputPaths(args params.Values) ([]string, error) {
	return t.coercePaths(t.InputParams, args)
}

// OutputPaths extracts the declared output paths from a resolved argument
// set, resolved to absolute paths.
func (t *Task) OutputPaths(args params.Values) ([]string, error) {
	return t.coercePaths(t.OutputParams, args)
}

// coercePaths turns path-taking parameter values into absolute paths. A nil
// or empty value drops out of the set (an optional path that wasn't given);
// any other non-string value is rejected before it can corrupt the freshness
// check.
func (t *Task) coercePaths(paramNames []string, args params.Values) ([]string, error) {
	var paths []string
	for _, name := range paramNames {
		value, ok := args[name]
		if !ok || value == nil {
			continue
		}

		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			abs, err := filepath.Abs(v)
			if err != nil {
				return nil, errors.NewInvalidPathValueError(name, value)
			}
			paths = append(paths, abs)
		case []string:
			for _, p := range v {
				if p == "" {
					continue
				}
				abs, err := filepath.Abs(p)
				if err != nil {
					return nil, errors.NewInvalidPathValueError(name, value)
				}
				paths = append(paths, abs)
			}
		case []any:
			for _, elem := range v {
				p, ok := elem.(string)
				if !ok {
					return nil, errors.NewInvalidPathValueError(name, elem)
				}
				if p == "" {
					continue
				}
				abs, err := filepath.Abs(p)
				if err != nil {
					return nil, errors.NewInvalidPathValueError(name, elem)
				}
				paths = append(paths, abs)
			}
		default:
			return nil, errors.NewInvalidPathValueError(name, value)
		}
	}
	return paths, nil
}
