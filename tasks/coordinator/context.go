package coordinator

import (
	"time"

	"github.com/haydenflinner/magicinvoke/tasks"
)

// State identifies where an invocation is in its lifecycle.
type State string

const (
	StateResolving State = "resolving"
	StateChecking  State = "checking"
	StateRunning   State = "running"
	StateStoring   State = "storing"
	StateDone      State = "done"
)

// invocationContext tracks state and timing for one invocation, for
// observability and debugging.
type invocationContext struct {
	Task         *tasks.Task
	InvocationID string
	State        State
	StartTime    time.Time
	EndTime      time.Time
}

// newInvocationContext initializes tracking for a new invocation.
func newInvocationContext(task *tasks.Task, invocationID string) *invocationContext {
	return &invocationContext{
		Task:         task,
		InvocationID: invocationID,
		State:        StateResolving,
		StartTime:    time.Now(),
	}
}

// transition advances the invocation to the next state.
func (ic *invocationContext) transition(next State) {
	ic.State = next
	if next == StateDone {
		ic.EndTime = time.Now()
	}
}

// Duration reports how long the invocation has taken so far, or took in
// total once done.
func (ic *invocationContext) Duration() time.Duration {
	if ic.EndTime.IsZero() {
		return time.Since(ic.StartTime)
	}
	return ic.EndTime.Sub(ic.StartTime)
}
