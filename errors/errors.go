package errors

import "fmt"

// TaskErrorType categorizes different kinds of task invocation failures
type TaskErrorType string

const (
	// MissingParameterError means a required parameter resolved to no value.
	MissingParameterError TaskErrorType = "missing_parameter"
	// UnhashableParameterError means a resolved parameter value cannot be
	// fingerprinted, so the skip decision would be unsafe.
	UnhashableParameterError TaskErrorType = "unhashable_parameter"
	// DependencyPathError means a declared input path does not exist on disk.
	DependencyPathError TaskErrorType = "dependency_path"
	// UnknownParameterError means an explicit argument named a parameter the
	// task does not declare.
	UnknownParameterError TaskErrorType = "unknown_parameter"
	// ExecutionError wraps a failure raised by a task body.
	ExecutionError TaskErrorType = "execution"
	// InternalError covers infrastructure failures (storage, wiring).
	InternalError TaskErrorType = "internal"
)

// TaskError provides structured error information for task invocations
type TaskError struct {
	Type    TaskErrorType  `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Constructor functions for common error types
func NewMissingParameterError(taskName, param string) *TaskError {
	return &TaskError{
		Type:    MissingParameterError,
		Message: fmt.Sprintf("task %q did not receive a value for required parameter %q", taskName, param),
		Details: map[string]any{
			"task":  taskName,
			"param": param,
		},
	}
}

func NewUnhashableParameterError(param string, value any) *TaskError {
	return &TaskError{
		Type:    UnhashableParameterError,
		Message: fmt.Sprintf("parameter %q has a value of type %T that cannot be fingerprinted", param, value),
		Details: map[string]any{
			"param":      param,
			"value_type": fmt.Sprintf("%T", value),
		},
	}
}

func NewUnknownParameterError(taskName, param string) *TaskError {
	return &TaskError{
		Type:    UnknownParameterError,
		Message: fmt.Sprintf("task %q got an unexpected argument %q", taskName, param),
		Details: map[string]any{
			"task":  taskName,
			"param": param,
		},
	}
}

func NewDependencyPathError(path string) *TaskError {
	return &TaskError{
		Type:    DependencyPathError,
		Message: fmt.Sprintf("declared input path %q does not exist", path),
		Details: map[string]any{
			"path": path,
		},
	}
}

func NewInvalidPathValueError(param string, value any) *TaskError {
	return &TaskError{
		Type:    DependencyPathError,
		Message: fmt.Sprintf("path-taking parameter %q received invalid value of type %T", param, value),
		Details: map[string]any{
			"param":      param,
			"value_type": fmt.Sprintf("%T", value),
		},
	}
}

func NewExecutionError(message string, details ...map[string]any) *TaskError {
	var d map[string]any
	if len(details) > 0 {
		d = details[0]
	}
	return &TaskError{
		Type:    ExecutionError,
		Message: message,
		Details: d,
	}
}

func NewInternalError(message string) *TaskError {
	return &TaskError{
		Type:    InternalError,
		Message: message,
	}
}

// IsTaskError checks if an error is a TaskError and returns it
func IsTaskError(err error) (*TaskError, bool) {
	if taskErr, ok := err.(*TaskError); ok {
		return taskErr, true
	}
	return nil, false
}
