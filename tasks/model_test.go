package tasks_test

import (
	"path/filepath"
	"testing"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/params"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func TestTask_PathCoercion(t *testing.T) {
	t.Parallel()

	task := &tasks.Task{
		Name:         "concat",
		InputParams:  []string{"inputs", "binary"},
		OutputParams: []string{"output"},
	}

	args := params.Values{
		"inputs": []string{"a.txt", "/abs/b.txt"},
		"binary": "tool.exe",
		"output": "out.txt",
	}

	inputs, err := task.InputPaths(args)
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	for _, p := range inputs {
		assert.Assert(t, filepath.IsAbs(p), p)
	}

	outputs, err := task.OutputPaths(args)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Assert(t, filepath.IsAbs(outputs[0]))
}

func TestTask_PathCoercion_AnySlice(t *testing.T) {
	t.Parallel()

	// Layer files decode lists as []any.
	task := &tasks.Task{Name: "concat", InputParams: []string{"inputs"}}

	inputs, err := task.InputPaths(params.Values{"inputs": []any{"a.txt", "b.txt"}})
	require.NoError(t, err)
	assert.Equal(t, 2, len(inputs))
}

func TestTask_PathCoercion_OptionalPathsDropOut(t *testing.T) {
	t.Parallel()

	task := &tasks.Task{Name: "concat", InputParams: []string{"maybe", "also"}}

	testCases := []struct {
		name string
		args params.Values
	}{
		{"nil value", params.Values{"maybe": nil}},
		{"empty string", params.Values{"maybe": ""}},
		{"absent param", params.Values{}},
		{"empty list element", params.Values{"maybe": []string{""}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			paths, err := task.InputPaths(tc.args)
			require.NoError(t, err)
			assert.Equal(t, 0, len(paths))
		})
	}
}

func TestTask_PathCoercion_RejectsNonStrings(t *testing.T) {
	t.Parallel()

	task := &tasks.Task{Name: "concat", InputParams: []string{"input"}}

	testCases := []struct {
		name  string
		value any
	}{
		{"int", 42},
		{"bool", true},
		{"list of ints", []any{1, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := task.InputPaths(params.Values{"input": tc.value})
			require.Error(t, err)
			taskErr, ok := errors.IsTaskError(err)
			require.True(t, ok)
			assert.Equal(t, errors.DependencyPathError, taskErr.Type)
		})
	}
}
