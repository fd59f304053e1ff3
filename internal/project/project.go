// Package project saves and loads PanelCut project files: a cut list, the
// settings it was optimized with and, optionally, the last plan.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/PanelCut/internal/model"
)

// FormatVersion is written to every project file.
const FormatVersion = "1"

// Extension is the conventional file extension for project files.
const Extension = ".panelcut.json"

// Project is the on-disk project document.
type Project struct {
	Version  string                    `json:"version"`
	SavedAt  time.Time                 `json:"savedAt"`
	CutList  model.CutList             `json:"cutList"`
	Settings model.Settings            `json:"settings"`
	Result   *model.OptimizationResult `json:"result,omitempty"`
}

// New returns a project with the current format version.
func New(cl model.CutList, settings model.Settings, result *model.OptimizationResult) Project {
	return Project{Version: FormatVersion, CutList: cl, Settings: settings, Result: result}
}

// Name returns the project name, falling back to the file-less default.
func (p Project) Name() string {
	if p.CutList.ProjectName != "" {
		return p.CutList.ProjectName
	}
	return "Untitled"
}

// Save writes p to path, creating parent directories. The file is written
// to a temporary sibling first and renamed into place.
func Save(path string, p Project) error {
	if p.Version == "" {
		p.Version = FormatVersion
	}
	if p.SavedAt.IsZero() {
		p.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".panelcut-*")
	if err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project file. Settings missing from older files take their
// defaults.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Version == "" {
		return Project{}, errors.New("invalid project file: missing version field")
	}
	if p.Version != FormatVersion {
		return Project{}, fmt.Errorf("unsupported project file version %q", p.Version)
	}
	p.Settings = p.Settings.WithDefaults()
	return p, nil
}
