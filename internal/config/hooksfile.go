// ABOUTME: Standalone YAML hooks file loading (hooks.yaml)
// ABOUTME: Same HookDef shape as JSON settings; missing file is not an error

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// hooksFile is the on-disk shape of hooks.yaml.
type hooksFile struct {
	Hooks map[string][]HookDef `yaml:"hooks"`
}

// LoadHooksFile reads hook definitions from a YAML file. A missing file
// yields an empty map; a malformed file is an error.
func LoadHooksFile(path string) (map[string][]HookDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f hooksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return f.Hooks, nil
}
