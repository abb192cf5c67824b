package registry_test

import (
	"testing"

	"github.com/haydenflinner/magicinvoke/tasks"
	"github.com/haydenflinner/magicinvoke/tasks/registry"
	"gotest.tools/v3/assert"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()
	r := registry.NewRegistry()

	r.Register(&tasks.Task{Name: "get-people"})

	got, ok := r.Get("get-people")
	assert.Assert(t, ok)
	assert.Equal(t, "get-people", got.Name)

	_, ok = r.Get("unknown")
	assert.Assert(t, !ok)
}

func TestRegistry_ReRegisterReplaces(t *testing.T) {
	t.Parallel()
	r := registry.NewRegistry()

	first := &tasks.Task{Name: "t"}
	second := &tasks.Task{Name: "t", InputParams: []string{"input"}}
	r.Register(first)
	r.Register(second)

	got, ok := r.Get("t")
	assert.Assert(t, ok)
	assert.Equal(t, 1, len(got.InputParams))
}

func TestRegistry_NamesSorted(t *testing.T) {
	t.Parallel()
	r := registry.NewRegistry()

	r.Register(&tasks.Task{Name: "zeta"})
	r.Register(&tasks.Task{Name: "alpha"})
	r.Register(&tasks.Task{Name: "mid"})

	assert.DeepEqual(t, []string{"alpha", "mid", "zeta"}, r.Names())
}
