// Package coordinator answers "run or reuse?" for each task invocation and
// commits new results after execution.
package coordinator

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
	"github.com/haydenflinner/magicinvoke/tasks/freshness"
	"github.com/haydenflinner/magicinvoke/tasks/params"
	"github.com/haydenflinner/magicinvoke/tasks/store"
)

// Options tune a single invocation.
type Options struct {
	// ForceRun bypasses the freshness check: the body always executes and the
	// new result is still stored.
	ForceRun bool
}

// Outcome is what one invocation produced.
type Outcome struct {
	InvocationID string
	// Payload is the cached or freshly computed result.
	Payload json.RawMessage
	// Skipped reports whether the body was skipped in favor of a stored
	// result, for user-facing "nothing to do" messaging.
	Skipped bool
	// Fingerprint identifies the resolved parameter set of this invocation.
	Fingerprint fingerprint.Fingerprint
	// Reason explains the skip/run decision.
	Reason string
	// Args is the resolved argument set the body ran (or would run) with.
	Args params.Values
}

// Coordinator orchestrates the parameter resolver, fingerprint builder,
// freshness oracle, and result store around a task body.
type Coordinator struct {
	store  store.ResultStore
	logger *logger.Logger
}

// New constructs a coordinator over the given result store.
func New(resultStore store.ResultStore, lg *logger.Logger) *Coordinator {
	return &Coordinator{
		store:  resultStore,
		logger: lg,
	}
}

// Invoke runs one invocation through the resolving → checking → running →
// storing → done lifecycle.
//
// A fresh verdict with a stored payload returns that payload without
// executing the body. Otherwise the body runs with the resolved arguments;
// its errors propagate unmodified and nothing is stored on failure. Store
// read/write failures only cost the optimization, so they are logged and
// absorbed, never surfaced.
func (c *Coordinator) Invoke(ctx context.Context, task *tasks.Task, layers []params.Layer, explicit params.Values, opts Options) (*Outcome, error) {
	ic := newInvocationContext(task, uuid.New().String())

	resolved, err := params.Resolve(task.Name, task.Spec, layers, explicit)
	if err != nil {
		return nil, err
	}

	ic.transition(StateChecking)

	fp, err := fingerprint.Build(resolved)
	if err != nil {
		// Fail closed: an unhashable parameter makes the skip decision
		// unsafe, so the body does not run.
		return nil, err
	}

	inputs, err := task.InputPaths(resolved)
	if err != nil {
		return nil, err
	}
	outputs, err := task.OutputPaths(resolved)
	if err != nil {
		return nil, err
	}

	entry, err := c.store.Load(ctx, task.Name, fp)
	if err != nil {
		c.logger.Warn("result store load failed, treating as miss", map[string]any{
			"task":          task.Name,
			"invocation_id": ic.InvocationID,
			"error":         err.Error(),
		})
		entry = nil
	}

	var previous fingerprint.Fingerprint
	var storedAt time.Time
	if entry != nil {
		previous = entry.Fingerprint
		storedAt = entry.StoredAt
	}

	verdict, err := freshness.Evaluate(inputs, outputs, previous, fp, storedAt)
	if err != nil {
		return nil, err
	}

	if verdict.Fresh && entry != nil && !opts.ForceRun {
		ic.transition(StateDone)
		c.logger.Invocation(task.Name, ic.InvocationID, true, ic.Duration(), map[string]any{
			"reason": verdict.Reason,
		})
		return &Outcome{
			InvocationID: ic.InvocationID,
			Payload:      entry.Payload,
			Skipped:      true,
			Fingerprint:  fp,
			Reason:       verdict.Reason,
			Args:         resolved,
		}, nil
	}

	reason := verdict.Reason
	if opts.ForceRun {
		reason = "forced run"
	}

	ic.transition(StateRunning)
	c.logger.Debug("running task body", map[string]any{
		"task":          task.Name,
		"invocation_id": ic.InvocationID,
		"reason":        reason,
	})

	payload, err := task.Handler.Run(ctx, resolved)
	if err != nil {
		// The body's failure is the caller's to see, unmodified. Nothing is
		// stored, so the next invocation re-runs.
		ic.transition(StateDone)
		c.logger.Task(task.Name, "task body failed", map[string]any{
			"invocation_id": ic.InvocationID,
			"error":         err.Error(),
		})
		return nil, err
	}

	ic.transition(StateStoring)
	newEntry := &store.Entry{
		Fingerprint: fp,
		Payload:     payload,
		StoredAt:    time.Now().UTC(),
		Params:      resolved,
	}
	if err := c.store.Save(ctx, task.Name, newEntry); err != nil {
		c.logger.Warn("result store save failed, result not cached", map[string]any{
			"task":          task.Name,
			"invocation_id": ic.InvocationID,
			"error":         err.Error(),
		})
	}

	ic.transition(StateDone)
	c.logger.Invocation(task.Name, ic.InvocationID, false, ic.Duration(), map[string]any{
		"reason": reason,
	})

	return &Outcome{
		InvocationID: ic.InvocationID,
		Payload:      payload,
		Skipped:      false,
		Fingerprint:  fp,
		Reason:       reason,
		Args:         resolved,
	}, nil
}

// Clean removes the task's declared output files for the given argument set
// and purges its whole cache namespace.
func (c *Coordinator) Clean(ctx context.Context, task *tasks.Task, layers []params.Layer, explicit params.Values) error {
	resolved, err := params.Resolve(task.Name, task.Spec, layers, explicit)
	if err != nil {
		return err
	}

	outputs, err := task.OutputPaths(resolved)
	if err != nil {
		return err
	}

	for _, out := range outputs {
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := c.store.Purge(ctx, task.Name); err != nil {
		return err
	}

	c.logger.Task(task.Name, "cleaned outputs and cached results", map[string]any{
		"outputs_removed": len(outputs),
	})
	return nil
}
