// ABOUTME: Settings loading with global + project config deep merge
// ABOUTME: JSON settings files; project values layer over global values

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// HookDef is one configured hook: a shell command bound to a lifecycle
// event, optionally filtered by a matcher regex.
type HookDef struct {
	Matcher   string `json:"matcher,omitempty" yaml:"matcher,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Command   string `json:"command" yaml:"command"`
	Mode      string `json:"mode,omitempty" yaml:"mode,omitempty"`
	TimeoutMs int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// Settings holds the merged configuration.
type Settings struct {
	DisableHooks bool                 `json:"disable_hooks,omitempty"`
	Hooks        map[string][]HookDef `json:"hooks,omitempty"`
	Env          map[string]string    `json:"env,omitempty"`
}

// HooksEnabled reports whether the hook system should be constructed at all.
func (s *Settings) HooksEnabled() bool {
	return !s.DisableHooks && len(s.Hooks) > 0
}

// Load reads and merges global and project-local settings, then layers in
// a project hooks.yaml if one exists. Project settings override global
// settings; hook lists append in global-then-project order.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)

	yamlHooks, err := LoadHooksFile(ProjectHooksFile(projectRoot))
	if err != nil {
		return nil, fmt.Errorf("loading hooks file: %w", err)
	}
	appendHooks(merged, yamlHooks)

	ResolveEnvVars(merged)
	return merged, nil
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.DisableHooks {
		result.DisableHooks = true
	}

	// Hook lists append so project hooks run after global ones.
	if len(project.Hooks) > 0 {
		result.Hooks = copyHooks(global.Hooks)
		for event, defs := range project.Hooks {
			result.Hooks[event] = append(result.Hooks[event], defs...)
		}
	}

	if len(project.Env) > 0 {
		if result.Env == nil {
			result.Env = make(map[string]string)
		}
		for k, v := range project.Env {
			result.Env[k] = v
		}
	}

	return &result
}

func copyHooks(hooks map[string][]HookDef) map[string][]HookDef {
	out := make(map[string][]HookDef, len(hooks))
	for event, defs := range hooks {
		out[event] = append([]HookDef(nil), defs...)
	}
	return out
}

// appendHooks folds an auxiliary hooks map into the settings.
func appendHooks(s *Settings, hooks map[string][]HookDef) {
	if len(hooks) == 0 {
		return
	}
	if s.Hooks == nil {
		s.Hooks = make(map[string][]HookDef, len(hooks))
	}
	for event, defs := range hooks {
		s.Hooks[event] = append(s.Hooks[event], defs...)
	}
}
