// Package freshness decides whether a previously stored task result is still
// valid given the current inputs and parameters.
package freshness

import (
	"fmt"
	"os"
	"time"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
)

// Verdict is the outcome of one freshness check. It is computed fresh on
// every invocation and never cached.
type Verdict struct {
	// Fresh reports whether the prior result may be reused.
	Fresh bool
	// Reason explains the verdict in human terms, for logging and the
	// "nothing to do" message.
	Reason string
}

func stale(format string, args ...any) Verdict {
	return Verdict{Fresh: false, Reason: fmt.Sprintf(format, args...)}
}

func fresh(format string, args ...any) Verdict {
	return Verdict{Fresh: true, Reason: fmt.Sprintf(format, args...)}
}

// Evaluate is a pure predicate over filesystem metadata and fingerprint
// equality; it never mutates state.
//
// Checks apply in priority order:
//
//  1. Any declared output path missing on disk is STALE.
//  2. A fingerprint mismatch (parameters changed since the last successful
//     run, or no previous run at all) is STALE.
//  3. With no declared inputs, matching fingerprints and present outputs are
//     FRESH: pure memoization by parameter equality.
//  4. With declared inputs, the oldest output must be at least as new as the
//     newest input. lastStored stands in for the oldest output when the task
//     declares no output paths, so input changes after the stored run still
//     force re-execution.
//
// A missing input path is an error, not a staleness signal: the task
// presumably cannot run either, so it is reported rather than silently
// treated as always-stale. Equal timestamps count as FRESH; the output is
// considered to already reflect that input.
func Evaluate(inputs, outputs []string, previous, current fingerprint.Fingerprint, lastStored time.Time) (Verdict, error) {
	// Input existence is validated before anything else so the error surfaces
	// even when an output is also missing.
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return Verdict{}, errors.NewDependencyPathError(in)
		}
	}

	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			return stale("output %q missing", out), nil
		}
	}

	if previous == "" {
		return stale("no previous result"), nil
	}
	if previous != current {
		return stale("parameters changed since last run"), nil
	}

	if len(inputs) == 0 {
		return fresh("parameters unchanged, no input files declared"), nil
	}

	newestInput, newestPath, err := newestMtime(inputs)
	if err != nil {
		return Verdict{}, err
	}

	oldestOutput := lastStored
	oldestPath := "stored result"
	if len(outputs) > 0 {
		oldestOutput, oldestPath, err = oldestMtime(outputs)
		if err != nil {
			// Outputs were stat'd above; a race deleting one mid-check reads
			// as stale rather than as a failure.
			return stale("output %q missing", oldestPath), nil
		}
	}

	if newestInput.After(oldestOutput) {
		return stale("input %q newer than %s", newestPath, oldestPath), nil
	}
	return fresh("inputs older than outputs"), nil
}

func newestMtime(paths []string) (time.Time, string, error) {
	var newest time.Time
	var newestPath string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, "", errors.NewDependencyPathError(p)
		}
		if mt := info.ModTime(); newestPath == "" || mt.After(newest) {
			newest, newestPath = mt, p
		}
	}
	return newest, newestPath, nil
}

func oldestMtime(paths []string) (time.Time, string, error) {
	var oldest time.Time
	var oldestPath string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, p, err
		}
		if mt := info.ModTime(); oldestPath == "" || mt.Before(oldest) {
			oldest, oldestPath = mt, p
		}
	}
	return oldest, oldestPath, nil
}
