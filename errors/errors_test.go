package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func TestTaskError_Error(t *testing.T) {
	t.Parallel()

	err := NewMissingParameterError("render", "width")

	assert.Equal(t, "[missing_parameter] task \"render\" did not receive a value for required parameter \"width\"", err.Error())
	assert.Equal(t, "render", err.Details["task"])
	assert.Equal(t, "width", err.Details["param"])
}

func TestConstructors_Types(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      *TaskError
		wantType TaskErrorType
	}{
		{"missing parameter", NewMissingParameterError("t", "p"), MissingParameterError},
		{"unhashable parameter", NewUnhashableParameterError("p", make(chan int)), UnhashableParameterError},
		{"dependency path", NewDependencyPathError("/no/such/file"), DependencyPathError},
		{"execution", NewExecutionError("boom"), ExecutionError},
		{"internal", NewInternalError("wiring"), InternalError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantType, tc.err.Type)
		})
	}
}

func TestNewUnhashableParameterError_ValueType(t *testing.T) {
	t.Parallel()

	err := NewUnhashableParameterError("conn", func() {})

	assert.Equal(t, "func()", err.Details["value_type"])
}

func TestIsTaskError(t *testing.T) {
	t.Parallel()

	taskErr := NewDependencyPathError("/missing")
	got, ok := IsTaskError(taskErr)
	require.True(t, ok)
	assert.Equal(t, DependencyPathError, got.Type)

	_, ok = IsTaskError(errors.New("plain"))
	require.False(t, ok)
}
