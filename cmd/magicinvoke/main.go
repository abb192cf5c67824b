// Command magicinvoke runs cached tasks: bodies execute only when their
// parameters or input files changed since the last stored result.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haydenflinner/magicinvoke/config"
	"github.com/haydenflinner/magicinvoke/logger"
	"github.com/haydenflinner/magicinvoke/tasks/coordinator"
	"github.com/haydenflinner/magicinvoke/tasks/handlers"
	"github.com/haydenflinner/magicinvoke/tasks/params"
	"github.com/haydenflinner/magicinvoke/tasks/registry"
	"github.com/haydenflinner/magicinvoke/tasks/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the wired pieces every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	registry *registry.TaskRegistry
	coord    *coordinator.Coordinator
	cleanup  func()
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	lg := logger.New(cfg.LogLevel, os.Stderr)

	resultStore, cleanup, err := newResultStore(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	reg.Register(handlers.NewPeopleTask(lg))
	reg.Register(handlers.NewConcatTask(lg))

	return &app{
		cfg:      cfg,
		logger:   lg,
		registry: reg,
		coord:    coordinator.New(resultStore, lg),
		cleanup:  cleanup,
	}, nil
}

func newResultStore(cfg *config.Config) (store.ResultStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryResultStore(), func() {}, nil
	case config.BackendRedis:
		rs, err := store.NewRedisResultStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to Redis result store: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return store.NewFileResultStore(cfg.CacheRoot), func() {}, nil
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "magicinvoke",
		Short: "Run tasks whose results are cached by parameters and file timestamps",
		Long: `magicinvoke decides for every task invocation whether the work already
happened: it fingerprints the resolved arguments, compares input and output
file timestamps, and replays the stored result when nothing changed.

Configuration comes from the environment: CACHE_ROOT, CACHE_BACKEND
(file|memory|redis), REDIS_URL, LOG_LEVEL, WORKER_COUNT, FORCE_RUN.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCleanCmd(),
		newListCmd(),
	)

	return rootCmd
}

// invokeFlags are the per-invocation knobs shared by run and clean.
type invokeFlags struct {
	paramArgs    []string
	contextFiles []string
	forceRun     bool
}

func (f *invokeFlags) register(cmd *cobra.Command, withForce bool) {
	cmd.Flags().StringArrayVar(&f.paramArgs, "param", nil, "explicit argument as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.contextFiles, "context", nil, "YAML context layer file, later files win (repeatable)")
	if withForce {
		cmd.Flags().BoolVar(&f.forceRun, "force-run", false, "execute the body even if the cached result is fresh")
	}
}

// layersFor loads the context layer files and flattens each for the task.
func (f *invokeFlags) layersFor(taskName string) ([]params.Layer, error) {
	layers := make([]params.Layer, 0, len(f.contextFiles))
	for _, path := range f.contextFiles {
		fl, err := params.LoadLayerFile(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fl.ForTask(taskName))
	}
	return layers, nil
}

// explicit parses the --param pairs. Values that read as booleans or numbers
// become those types so they fingerprint the same as layer and default
// values.
func (f *invokeFlags) explicit() (params.Values, error) {
	if len(f.paramArgs) == 0 {
		return nil, nil
	}
	values := make(params.Values, len(f.paramArgs))
	for _, pair := range f.paramArgs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected name=value", pair)
		}
		values[name] = coerceScalar(raw)
	}
	return values, nil
}

func coerceScalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func newRunCmd() *cobra.Command {
	var flags invokeFlags

	cmd := &cobra.Command{
		Use:   "run <task>",
		Short: "Invoke a task, skipping its body when the cached result is still fresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			task, ok := a.registry.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown task %q: available tasks are %s",
					args[0], strings.Join(a.registry.Names(), ", "))
			}

			layers, err := flags.layersFor(task.Name)
			if err != nil {
				return err
			}
			explicit, err := flags.explicit()
			if err != nil {
				return err
			}

			outcome, err := a.coord.Invoke(context.Background(), task, layers, explicit, coordinator.Options{
				ForceRun: flags.forceRun || a.cfg.ForceRun,
			})
			if err != nil {
				return err
			}

			if outcome.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "task skipped: %s\n", outcome.Reason)
			}
			if len(outcome.Payload) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), string(outcome.Payload))
			}
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

func newCleanCmd() *cobra.Command {
	var flags invokeFlags

	cmd := &cobra.Command{
		Use:   "clean <task>",
		Short: "Remove a task's declared output files and purge its cached results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			task, ok := a.registry.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown task %q: available tasks are %s",
					args[0], strings.Join(a.registry.Names(), ", "))
			}

			layers, err := flags.layersFor(task.Name)
			if err != nil {
				return err
			}
			explicit, err := flags.explicit()
			if err != nil {
				return err
			}

			if err := a.coord.Clean(context.Background(), task, layers, explicit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", task.Name)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			for _, name := range a.registry.Names() {
				task, _ := a.registry.Get(name)
				required := make([]string, 0, len(task.Spec.Names))
				for _, p := range task.Spec.Names {
					if _, ok := task.Spec.Defaults[p]; !ok {
						required = append(required, p)
					}
				}
				line := name
				if len(required) > 0 {
					line += " (requires " + strings.Join(required, ", ") + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
