package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLibraryPath returns the path of the default template library,
// ~/.config/linedecode/templates.json (per-OS config dir).
func DefaultLibraryPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}

	appDir := filepath.Join(configDir, "linedecode")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	return filepath.Join(appDir, "templates.json"), nil
}

// Save persists the library to a JSON file.
func (l *Library) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize library: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return nil
}

// LoadLibrary loads a template library from a JSON file.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}

	// Indexes are positional; repair any stale values from hand-edited files.
	for i, c := range lib.Classes {
		c.Index = i
	}
	return &lib, nil
}
