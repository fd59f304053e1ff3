package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/share"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panelcut.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, model.DefaultSettings(), c.Settings)
	assert.Equal(t, BackendMemory, c.Share.Backend)
	assert.Equal(t, share.DefaultTTL, c.Share.TTL)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, "panelcut", c.Telemetry.ServiceName)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
settings:
  kerf: 4.5
  heuristic: best-short-side
  genetic:
    generations: 10
default_material: MDF-19
share:
  backend: s3
  bucket: cutlists
  ttl: 48h
log:
  format: json
`)
	v, err := New(path)
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 4.5, c.Settings.Kerf)
	assert.Equal(t, model.HeuristicBestShortSide, c.Settings.Heuristic)
	assert.Equal(t, 10, c.Settings.Genetic.Generations)
	assert.Equal(t, model.DefaultGeneticSettings().PopulationSize, c.Settings.Genetic.PopulationSize)
	assert.Equal(t, "MDF-19", c.DefaultMaterial)
	assert.Equal(t, BackendS3, c.Share.Backend)
	assert.Equal(t, "cutlists", c.Share.Bucket)
	assert.Equal(t, 48*time.Hour, c.Share.TTL)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "settings:\n  kerf: 4.5\n")
	t.Setenv("PANELCUT_SETTINGS_KERF", "2")
	t.Setenv("PANELCUT_SERVER_ADDR", ":9090")

	v, err := New(path)
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2.0, c.Settings.Kerf)
	assert.Equal(t, ":9090", c.Server.Addr)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative kerf", "settings:\n  kerf: -1\n"},
		{"s3 without bucket", "share:\n  backend: s3\n"},
		{"unknown backend", "share:\n  backend: redis\n"},
		{"zero ttl", "share:\n  ttl: 0s\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"negative thickness", "default_thickness: -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(writeConfig(t, tt.body))
			require.NoError(t, err)
			_, err = Load(v)
			assert.Error(t, err)
		})
	}
}
