// ABOUTME: Well-known config and session file locations
// ABOUTME: Global config under the home dir, project config under .pi-hooks/

package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".pi-hooks"

// GlobalConfigFile returns the path of the per-user settings file.
func GlobalConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, appDirName, "settings.json")
}

// ProjectConfigFile returns the path of the project-local settings file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, appDirName, "settings.json")
}

// ProjectHooksFile returns the path of the project-local YAML hooks file.
func ProjectHooksFile(projectRoot string) string {
	return filepath.Join(projectRoot, appDirName, "hooks.yaml")
}

// SessionsDir returns the directory holding session transcripts, creating
// it if needed.
func SessionsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, appDirName, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
