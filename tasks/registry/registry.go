package registry

import (
	"sort"
	"sync"

	"github.com/haydenflinner/magicinvoke/tasks"
)

// TaskRegistry maintains a mapping between task names and their definitions.
// This lets the hosting framework (or the CLI) resolve a task identity to its
// parameter spec, dependency declaration, and body at invocation time.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*tasks.Task
}

// NewRegistry constructs a new task registry.
func NewRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]*tasks.Task),
	}
}

// Register binds a task definition to its name.
// This should be called during application initialization.
func (r *TaskRegistry) Register(task *tasks.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.Name] = task
}

// Get returns the task registered under the given name.
// If no task is registered, ok will be false.
func (r *TaskRegistry) Get(name string) (*tasks.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	return t, ok
}

// Names returns the sorted names of all registered tasks.
// This is useful for listings, debugging, and error messages.
func (r *TaskRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
