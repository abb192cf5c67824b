// Package handlers holds small built-in task bodies used by the CLI and as
// working examples of cached tasks.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

var defaultPeople = []string{"ana", "bo", "carla", "dmitri", "edith", "farouk"}

// PeopleHandler writes a list of names to its output path and returns the
// names. With no input files declared, repeat invocations with the same
// arguments skip as long as the output exists.
type PeopleHandler struct {
	logger *logger.Logger
}

func (h *PeopleHandler) Run(_ context.Context, args params.Values) (json.RawMessage, error) {
	count, err := intArg(args, "count")
	if err != nil {
		return nil, err
	}
	if count < 1 || count > len(defaultPeople) {
		return nil, errors.NewExecutionError(fmt.Sprintf("count must be between 1 and %d", len(defaultPeople)), map[string]any{
			"count": count,
		})
	}
	output, _ := args["output"].(string)

	people := defaultPeople[:count]
	if err := os.WriteFile(output, []byte(strings.Join(people, "\n")+"\n"), 0o644); err != nil {
		return nil, errors.NewExecutionError("failed to write people file", map[string]any{
			"output": output,
			"error":  err.Error(),
		})
	}

	h.logger.Task("get-people", "wrote people file", map[string]any{
		"output": output,
		"count":  count,
	})

	return json.Marshal(people)
}

// NewPeopleTask defines the get-people task from the handler above.
func NewPeopleTask(lg *logger.Logger) *tasks.Task {
	return &tasks.Task{
		Name: "get-people",
		Spec: params.Spec{
			Names: []string{"output", "count"},
			Defaults: params.Values{
				"output": "people.txt",
				"count":  3,
			},
		},
		OutputParams: []string{"output"},
		Handler:      &PeopleHandler{logger: lg},
	}
}

// intArg reads an integer parameter that may arrive as any integer kind
// (YAML layers decode to int, JSON to float64).
func intArg(args params.Values, name string) (int, error) {
	switch v := args[name].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.NewExecutionError(fmt.Sprintf("parameter %q must be an integer, got %T", name, args[name]))
	}
}
