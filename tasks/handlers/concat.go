package handlers

import (
	"context"
	"encoding/json"
	"os"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/params"
)

// ConcatHandler concatenates its input files into the output file, the
// classic make-style target: it re-runs only when an input is newer than the
// output or the argument set changes.
type ConcatHandler struct {
	logger *logger.Logger
}

func (h *ConcatHandler) Run(_ context.Context, args params.Values) (json.RawMessage, error) {
	task := &tasks.Task{InputParams: []string{"inputs"}, OutputParams: []string{"output"}}
	inputs, err := task.InputPaths(args)
	if err != nil {
		return nil, err
	}
	outputs, err := task.OutputPaths(args)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		return nil, errors.NewExecutionError("concat requires exactly one output path")
	}

	var combined []byte
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return nil, errors.NewExecutionError("failed to read input file", map[string]any{
				"input": in,
				"error": err.Error(),
			})
		}
		combined = append(combined, data...)
	}

	if err := os.WriteFile(outputs[0], combined, 0o644); err != nil {
		return nil, errors.NewExecutionError("failed to write output file", map[string]any{
			"output": outputs[0],
			"error":  err.Error(),
		})
	}

	h.logger.Task("concat", "concatenated inputs", map[string]any{
		"inputs": len(inputs),
		"bytes":  len(combined),
	})

	return json.Marshal(map[string]any{
		"output": outputs[0],
		"bytes":  len(combined),
	})
}

// NewConcatTask defines the concat task from the handler above. Both
// parameters are required: inputs is a list of paths, output a single path.
func NewConcatTask(lg *logger.Logger) *tasks.Task {
	return &tasks.Task{
		Name: "concat",
		Spec: params.Spec{
			Names: []string{"inputs", "output"},
		},
		InputParams:  []string{"inputs"},
		OutputParams: []string{"output"},
		Handler:      &ConcatHandler{logger: lg},
	}
}
