package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadLayerFile reads one context layer from a YAML file.
//
// Top-level keys are parameter names. A top-level key whose value is a mapping
// is treated as a per-task section: its entries apply only to the task of that
// name and override the flat keys. For example:
//
//	verbose: true
//	get-people:
//	  count: 5
//
// yields {verbose: true} for every task and {verbose: true, count: 5} for
// get-people.
func LoadLayerFile(path string) (FileLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileLayer{}, fmt.Errorf("reading context layer %q: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return FileLayer{}, fmt.Errorf("parsing context layer %q: %w", path, err)
	}

	flat := make(Layer)
	sections := make(map[string]Layer)
	for key, value := range raw {
		if section, ok := value.(map[string]any); ok {
			sections[key] = Layer(section)
			continue
		}
		flat[key] = value
	}

	return FileLayer{Path: path, flat: flat, sections: sections}, nil
}

// FileLayer is a context layer parsed from a file, with optional per-task
// sections.
type FileLayer struct {
	Path string

	flat     Layer
	sections map[string]Layer
}

// ForTask flattens the layer for one task: the task's section, if any,
// overlaid on the flat keys.
func (f FileLayer) ForTask(taskName string) Layer {
	section := f.sections[taskName]
	merged := make(Layer, len(f.flat)+len(section))
	for k, v := range f.flat {
		merged[k] = v
	}
	for k, v := range section {
		merged[k] = v
	}
	return merged
}
