package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
)

var _ engine.Catalog = (*Catalog)(nil)

func TestResolveStockSheetSpecs(t *testing.T) {
	c := Default()
	specs, err := c.ResolveStockSheetSpecs(context.Background(), "mdf")
	require.NoError(t, err)
	require.NotEmpty(t, specs)

	first := specs[0]
	assert.Equal(t, "MDF", first.MaterialRef)
	assert.Equal(t, "MDF", first.MaterialName)
	assert.Equal(t, "MDF-2800x2070x19", first.ID)
	assert.Equal(t, 2800.0, first.Length)

	// The catalog itself is not modified.
	assert.Empty(t, c.Materials[0].Sheets[0].ID)
}

func TestResolveUnknownMaterialReturnsNothing(t *testing.T) {
	specs, err := Default().ResolveStockSheetSpecs(context.Background(), "TEAK")
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestMaterialRefsSorted(t *testing.T) {
	assert.Equal(t, []string{"MDF", "MEL-W", "OSB", "PLY"}, Default().MaterialRefs())
}

func TestAddSheet(t *testing.T) {
	c := &Catalog{}
	c.AddSheet("OAK", "Oak veneer", model.StockSheetSpec{Length: 2500, Width: 1220, Thickness: 19})
	c.AddSheet("oak", "", model.StockSheetSpec{Length: 1220, Width: 610, Thickness: 19})

	require.Len(t, c.Materials, 1)
	assert.Len(t, c.Materials[0].Sheets, 2)
}

func TestMergeSkipsKnownSheets(t *testing.T) {
	c := Default()
	before := len(c.FindMaterial("MDF").Sheets)

	other := &Catalog{Materials: []Material{
		{Ref: "MDF", Sheets: []model.StockSheetSpec{
			{Length: 2800, Width: 2070, Thickness: 19},
			{Length: 3050, Width: 1220, Thickness: 19},
		}},
		{Ref: "HPL", Name: "Compact laminate", Sheets: []model.StockSheetSpec{{Length: 3050, Width: 1300, Thickness: 12}}},
	}}
	c.Merge(other)

	assert.Len(t, c.FindMaterial("MDF").Sheets, before+1)
	assert.NotNil(t, c.FindMaterial("HPL"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"catalog.yaml", "catalog.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, Default()))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, Default(), loaded)
		})
	}
}

func TestLoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	content := `materials:
  - ref: MDF-19
    name: MDF 19mm
    sheets:
      - id: big
        length: 2800
        width: 2070
        thickness: 19
        price: 62.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	specs, err := c.ResolveStockSheetSpecs(context.Background(), "MDF-19")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "big", specs[0].ID)
	assert.Equal(t, 62.5, specs[0].Price)
	assert.Equal(t, "MDF 19mm", specs[0].MaterialName)
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "materials:\n  - ref: X\n    sheets:\n      - length: 0\n        width: 100\n        thickness: 19\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrCreateWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	c, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.FileExists(t, path)
}

func TestCatalogDrivesOptimizer(t *testing.T) {
	opt := engine.New(Default())
	result, err := opt.Optimize(context.Background(), model.CutList{
		MaterialRef: "PLY",
		Pieces: []model.PieceRequest{
			{Name: "Shelf", Length: 1200, Width: 300, Thickness: 18, Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PLY-1250x1250x18", result.Sheets[0].StockID)
}
