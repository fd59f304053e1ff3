package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/model"
)

func geneticSettings() model.Settings {
	s := model.DefaultSettings()
	s.Algorithm = model.AlgorithmGenetic
	s.Genetic.PopulationSize = 12
	s.Genetic.Generations = 8
	return s
}

func TestGenetic_PlacesEveryPiece(t *testing.T) {
	pieces := randomCutList(11, 12)
	result, err := optimize(t, staticCatalog(standardSheet()), geneticSettings(), pieces...)
	require.NoError(t, err)

	assert.Equal(t, model.CutList{Pieces: pieces}.TotalQuantity(), result.Stats.TotalPieces)
	assertPlanValid(t, result, 0)
}

func TestGenetic_NeverWorseThanGreedy(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		pieces := randomCutList(seed, 10)

		greedy, err := optimize(t, staticCatalog(standardSheet()), model.DefaultSettings(), pieces...)
		require.NoError(t, err)
		ga, err := optimize(t, staticCatalog(standardSheet()), geneticSettings(), pieces...)
		require.NoError(t, err)

		assert.LessOrEqual(t, ga.Stats.TotalSheets, greedy.Stats.TotalSheets, "seed %d", seed)
	}
}

func TestGenetic_SheetsThenEfficiencyAcrossStockSizes(t *testing.T) {
	small := model.StockSheetSpec{ID: "mdf19-1220", MaterialRef: testMaterial, Length: 1220, Width: 610, Thickness: 19}
	catalog := staticCatalog(standardSheet(), small)

	for seed := int64(1); seed <= 6; seed++ {
		pieces := randomCutList(seed, 8)

		greedy, err := optimize(t, catalog, model.DefaultSettings(), pieces...)
		require.NoError(t, err)
		ga, err := optimize(t, catalog, geneticSettings(), pieces...)
		require.NoError(t, err)

		require.LessOrEqual(t, ga.Stats.TotalSheets, greedy.Stats.TotalSheets, "seed %d", seed)
		if ga.Stats.TotalSheets == greedy.Stats.TotalSheets {
			assert.GreaterOrEqual(t, ga.Stats.GlobalEfficiency+1e-9, greedy.Stats.GlobalEfficiency, "seed %d", seed)
		}
		assertPlanValid(t, ga, 0)
	}
}

func TestChromosome_FewerSheetsWinOverEfficiency(t *testing.T) {
	one := chromosome{efficiency: 0.40, sheets: make([]*sheetState, 1)}
	two := chromosome{efficiency: 0.95, sheets: make([]*sheetState, 2)}
	assert.True(t, one.fitter(two))
	assert.False(t, two.fitter(one))

	tighter := chromosome{efficiency: 0.60, sheets: make([]*sheetState, 1)}
	assert.True(t, tighter.fitter(one))
	assert.False(t, one.fitter(one))
}

func TestGenetic_Deterministic(t *testing.T) {
	pieces := randomCutList(5, 10)

	a, err := optimize(t, staticCatalog(standardSheet()), geneticSettings(), pieces...)
	require.NoError(t, err)
	b, err := optimize(t, staticCatalog(standardSheet()), geneticSettings(), pieces...)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestOrderCrossover_ProducesPermutation(t *testing.T) {
	g := newGeneticSearch(geneticSettings(), thicknessGroup{}, nil)
	p1 := chromosome{order: []int{0, 1, 2, 3, 4, 5, 6, 7}}
	p2 := chromosome{order: []int{7, 6, 5, 4, 3, 2, 1, 0}}

	for i := 0; i < 20; i++ {
		child := g.orderCrossover(p1, p2)
		seen := make(map[int]bool)
		for _, gene := range child.order {
			assert.False(t, seen[gene], "gene %d repeated", gene)
			seen[gene] = true
		}
		assert.Len(t, seen, 8)
	}
}

func TestMutate_KeepsPermutation(t *testing.T) {
	s := geneticSettings()
	s.Genetic.MutationRate = 1
	g := newGeneticSearch(s, thicknessGroup{}, nil)

	c := chromosome{order: []int{0, 1, 2, 3, 4, 5}}
	for i := 0; i < 20; i++ {
		g.mutate(&c)
	}
	seen := make(map[int]bool)
	for _, gene := range c.order {
		seen[gene] = true
	}
	assert.Len(t, seen, 6)
}
