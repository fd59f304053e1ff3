package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/catalog"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
)

const kitchenCSV = "Name,Length,Width,Thickness,Qty\nSide,720,560,19,2\nShelf,564,540,19,1\n"

// setup isolates HOME and returns a directory holding kitchen.csv and a
// catalog file.
func setup(t *testing.T) (dir, catalogPath string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kitchen.csv"), []byte(kitchenCSV), 0o644))
	catalogPath = filepath.Join(dir, "catalog.yaml")
	require.NoError(t, catalog.Save(catalogPath, catalog.Default()))
	return dir, catalogPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	cmd := a.rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func TestOptimize_JSONToStdout(t *testing.T) {
	dir, cat := setup(t)

	out, err := run(t, "optimize", filepath.Join(dir, "kitchen.csv"), "--catalog", cat, "--material", "MDF", "--out", "-")
	require.NoError(t, err)

	var result model.OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Stats.TotalPieces)
	assert.NotEmpty(t, result.Sheets)
	assert.Equal(t, 3, result.PlacementCount())
}

func TestOptimize_WritesExportsAndProject(t *testing.T) {
	dir, cat := setup(t)
	pdfPath := filepath.Join(dir, "kitchen.pdf")
	labelsPath := filepath.Join(dir, "labels.pdf")
	xlsxPath := filepath.Join(dir, "kitchen.xlsx")
	savePath := filepath.Join(dir, "kitchen"+project.Extension)

	out, err := run(t, "optimize", filepath.Join(dir, "kitchen.csv"),
		"--catalog", cat, "--material", "MDF", "--kerf", "3",
		"--pdf", pdfPath, "--labels", labelsPath, "--xlsx", xlsxPath, "--save", savePath)
	require.NoError(t, err)
	assert.Contains(t, out, "kitchen: MDF")
	assert.Contains(t, out, "3 pieces on")

	for _, p := range []string{pdfPath, labelsPath, xlsxPath, savePath} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}

	p, err := project.Load(savePath)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Settings.Kerf)
	require.NotNil(t, p.Result)

	recentPath, err := project.DefaultRecentPath()
	require.NoError(t, err)
	recent, err := project.LoadRecent(recentPath)
	require.NoError(t, err)
	assert.Equal(t, []string{savePath}, recent)
}

func TestOptimize_ProjectFileKeepsSavedSettings(t *testing.T) {
	dir, cat := setup(t)
	savePath := filepath.Join(dir, "kitchen"+project.Extension)

	_, err := run(t, "optimize", filepath.Join(dir, "kitchen.csv"), "--catalog", cat, "--material", "MDF", "--kerf", "4", "--save", savePath)
	require.NoError(t, err)

	out, err := run(t, "optimize", savePath, "--catalog", cat, "--out", "-")
	require.NoError(t, err)
	var result model.OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Stats.TotalPieces)
}

func TestOptimize_Errors(t *testing.T) {
	dir, cat := setup(t)
	csv := filepath.Join(dir, "kitchen.csv")

	_, err := run(t, "optimize", csv, "--catalog", cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no material")

	_, err = run(t, "optimize", csv, "--catalog", cat, "--material", "WALNUT")
	var unknown *model.UnknownMaterialError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "WALNUT", unknown.MaterialRef)

	_, err = run(t, "optimize", csv, "--catalog", cat, "--material", "MDF", "--heuristic", "worst-fit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown heuristic")

	_, err = run(t, "optimize", filepath.Join(dir, "missing.csv"), "--catalog", cat, "--material", "MDF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import")
}

func TestCompare_JSON(t *testing.T) {
	dir, cat := setup(t)

	out, err := run(t, "compare", filepath.Join(dir, "kitchen.csv"), "--catalog", cat, "--material", "MDF", "--out", "-")
	require.NoError(t, err)

	var results []engine.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	for _, r := range results {
		assert.Empty(t, r.Err, r.Scenario.Name)
		assert.Positive(t, r.SheetsUsed, r.Scenario.Name)
	}
}

func TestEstimate(t *testing.T) {
	dir, cat := setup(t)

	out, err := run(t, "estimate", filepath.Join(dir, "kitchen.csv"), "--catalog", cat, "--material", "MDF")
	require.NoError(t, err)
	assert.Contains(t, out, "MDF-2800x2070x19")
	assert.NotContains(t, out, "MDF-2800x2070x16")
}

func TestCatalogInitAndList(t *testing.T) {
	dir, _ := setup(t)
	path := filepath.Join(dir, "new-catalog.yaml")

	out, err := run(t, "catalog", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "catalog", "init", path)
	assert.Error(t, err)

	out, err = run(t, "catalog", "list", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Birch Plywood")
	assert.Contains(t, out, "OSB-2500x1250x18")
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "panelcut "+Version)
}

func TestConfigFile_DefaultMaterial(t *testing.T) {
	dir, cat := setup(t)
	cfgPath := filepath.Join(dir, "panelcut.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("default_material: PLY\ndefault_thickness: 18\n"), 0o644))
	noThickness := filepath.Join(dir, "shelves.csv")
	require.NoError(t, os.WriteFile(noThickness, []byte("Name,Length,Width,Qty\nShelf,800,300,4\n"), 0o644))

	out, err := run(t, "optimize", noThickness, "--config", cfgPath, "--catalog", cat, "--out", "-")
	require.NoError(t, err)

	var result model.OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Sheets)
	assert.Equal(t, "PLY", result.Sheets[0].MaterialRef)
	assert.Equal(t, 18.0, result.Sheets[0].Thickness)
}

func TestRunErrorsAreTyped(t *testing.T) {
	dir, cat := setup(t)
	big := filepath.Join(dir, "big.csv")
	require.NoError(t, os.WriteFile(big, []byte("Name,Length,Width,Thickness,Qty\nTop,5000,900,19,1\n"), 0o644))

	_, err := run(t, "optimize", big, "--catalog", cat, "--material", "MDF")
	var unplaceable *model.UnplaceablePieceError
	assert.True(t, errors.As(err, &unplaceable))
}
