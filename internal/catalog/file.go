package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns ~/.panelcut/catalog.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".panelcut", "catalog.yaml"), nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Save writes the catalog to path as JSON when the extension is .json and
// as YAML otherwise. Parent directories are created as needed.
func Save(path string, c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a catalog file written by Save or by hand.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Catalog
	if isJSON(path) {
		err = json.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

// LoadOrCreate loads the catalog at path. A missing file is replaced by the
// default catalog, which is written to path.
func LoadOrCreate(path string) (*Catalog, error) {
	c, err := Load(path)
	if err == nil {
		return c, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	c = Default()
	if err := Save(path, c); err != nil {
		return c, err
	}
	return c, nil
}

// Import merges the catalog file at path into existing.
func Import(path string, existing *Catalog) (*Catalog, error) {
	imported, err := Load(path)
	if err != nil {
		return existing, err
	}
	existing.Merge(imported)
	return existing, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for _, m := range c.Materials {
		if strings.TrimSpace(m.Ref) == "" {
			return fmt.Errorf("material %q has no ref", m.Name)
		}
		key := strings.ToLower(m.Ref)
		if seen[key] {
			return fmt.Errorf("duplicate material ref %q", m.Ref)
		}
		seen[key] = true
		for _, s := range m.Sheets {
			if s.Length <= 0 || s.Width <= 0 || s.Thickness <= 0 {
				return fmt.Errorf("material %s: sheet %gx%gx%g must have positive dimensions", m.Ref, s.Length, s.Width, s.Thickness)
			}
		}
	}
	return nil
}
