package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MaxRecent is the number of recent projects remembered.
const MaxRecent = 10

// DefaultRecentPath returns ~/.panelcut/recent.json.
func DefaultRecentPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".panelcut", "recent.json"), nil
}

// LoadRecent reads the recent project list. A missing file is an empty list.
func LoadRecent(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var recent []string
	if err := json.Unmarshal(data, &recent); err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []string{}
	}
	return recent, nil
}

// AddRecent moves projectPath to the front of the list stored at path.
func AddRecent(path, projectPath string) ([]string, error) {
	recent, err := LoadRecent(path)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(projectPath); err == nil {
		projectPath = abs
	}

	updated := []string{projectPath}
	for _, p := range recent {
		if p != projectPath && len(updated) < MaxRecent {
			updated = append(updated, p)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return nil, err
	}
	return updated, os.WriteFile(path, data, 0644)
}
