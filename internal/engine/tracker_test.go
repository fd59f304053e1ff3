package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PanelCut/internal/geom"
)

func TestFreeTracker_BestFitPrefersTightestRegion(t *testing.T) {
	tr := &freeTracker{regions: []geom.Rect{
		{X: 0, Y: 500, Length: 1000, Width: 500},
		{X: 600, Y: 0, Length: 400, Width: 500},
	}, split: geom.SplitMaxArea}

	f, ok := tr.bestFit(400, 300, true, scoreBestArea)
	require.True(t, ok)
	assert.Equal(t, 1, f.index)
	assert.False(t, f.rotated)
}

func TestFreeTracker_BestFitTieBreaks(t *testing.T) {
	// Identical regions: the lower one wins, then the leftmost.
	tr := &freeTracker{regions: []geom.Rect{
		{X: 500, Y: 500, Length: 500, Width: 500},
		{X: 500, Y: 0, Length: 500, Width: 500},
		{X: 0, Y: 0, Length: 500, Width: 500},
	}}
	f, ok := tr.bestFit(200, 100, true, scoreBestArea)
	require.True(t, ok)
	assert.Equal(t, 2, f.index)
	assert.False(t, f.rotated, "equal scores keep the piece unrotated")
}

func TestFreeTracker_RotationOnlyWhenAllowed(t *testing.T) {
	tr := newFreeTracker(geom.Rect{Length: 1000, Width: 300}, geom.SplitMaxArea, 0, 20)

	_, ok := tr.bestFit(300, 900, false, scoreBestArea)
	assert.False(t, ok)

	f, ok := tr.bestFit(300, 900, true, scoreBestArea)
	require.True(t, ok)
	assert.True(t, f.rotated)
}

func TestFreeTracker_AllocateKeepsTiling(t *testing.T) {
	sheet := geom.Rect{Length: 2800, Width: 2070}
	tr := newFreeTracker(sheet, geom.SplitMaxArea, 0, 3)

	var placed []geom.Rect
	sizes := [][2]float64{{1000, 600}, {800, 500}, {600, 600}, {1200, 300}, {400, 400}, {900, 900}}
	for _, sz := range sizes {
		f, ok := tr.bestFit(sz[0], sz[1], false, scoreBestArea)
		require.True(t, ok)
		placed = append(placed, tr.allocate(f, sz[0], sz[1]))
	}

	var used float64
	for _, p := range placed {
		used += p.Area()
		for _, r := range tr.regions {
			assert.False(t, geom.Overlaps(p, r))
		}
	}
	assert.InDelta(t, sheet.Area(), used+tr.freeArea(), 1e-6)
}

func TestFreeTracker_KerfClippedOnlyAtSheetEdge(t *testing.T) {
	sheet := geom.Rect{Length: 1000, Width: 1000}

	inner := &freeTracker{sheet: sheet, kerf: 4, regions: []geom.Rect{{X: 0, Y: 0, Length: 500, Width: 500}}}
	_, ok := inner.bestFit(500, 500, false, scoreBestArea)
	assert.False(t, ok, "a region bounded by other cuts needs the full kerf")
	_, ok = inner.bestFit(498, 496, false, scoreBestArea)
	assert.False(t, ok)
	f, ok := inner.bestFit(496, 496, false, scoreBestArea)
	require.True(t, ok)
	inner.allocate(f, 496, 496)
	assert.InDelta(t, 0.0, inner.freeArea(), 1e-6)

	corner := &freeTracker{sheet: sheet, kerf: 4, regions: []geom.Rect{{X: 500, Y: 500, Length: 500, Width: 500}}}
	f, ok = corner.bestFit(500, 500, false, scoreBestArea)
	require.True(t, ok, "the kerf is dropped against the sheet edge")
	assert.Equal(t, geom.Rect{X: 500, Y: 500, Length: 500, Width: 500}, corner.allocate(f, 500, 500))
}

func TestFreeTracker_KerfFootprintsTileSheet(t *testing.T) {
	sheet := geom.Rect{Length: 2800, Width: 2070}
	const kerf = 4
	tr := newFreeTracker(sheet, geom.SplitMaxArea, kerf, 3)

	var placed []geom.Rect
	sizes := [][2]float64{{1000, 600}, {800, 500}, {600, 600}, {1200, 300}, {400, 400}, {900, 900}, {1796, 296}}
	for _, sz := range sizes {
		f, ok := tr.bestFit(sz[0], sz[1], false, scoreBestArea)
		if !ok {
			continue
		}
		placed = append(placed, tr.allocate(f, sz[0], sz[1]))
	}
	require.NotEmpty(t, placed)

	var used float64
	for i, p := range placed {
		fp := geom.Rect{X: p.X, Y: p.Y, Length: min(p.Length+kerf, sheet.Right()-p.X), Width: min(p.Width+kerf, sheet.Top()-p.Y)}
		used += fp.Area()
		for _, r := range tr.regions {
			assert.False(t, geom.Overlaps(fp, r))
		}
		for _, q := range placed[i+1:] {
			assert.False(t, geom.Overlaps(fp, q), "%+v within a kerf of %+v", q, p)
		}
	}
	assert.InDelta(t, sheet.Area(), used+tr.freeArea(), 1e-6)
}

func TestFreeTracker_MergeJoinsFullEdges(t *testing.T) {
	tr := &freeTracker{regions: []geom.Rect{
		{X: 0, Y: 0, Length: 100, Width: 100},
		{X: 0, Y: 200, Length: 100, Width: 50},
		{X: 100, Y: 0, Length: 100, Width: 100},
		{X: 0, Y: 100, Length: 200, Width: 100},
	}}
	tr.merge()

	require.Len(t, tr.regions, 2)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Length: 200, Width: 200}, tr.regions[0])
	assert.Equal(t, geom.Rect{X: 0, Y: 200, Length: 100, Width: 50}, tr.regions[1])
}

func TestFreeTracker_PeriodicMerge(t *testing.T) {
	tr := newFreeTracker(geom.Rect{Length: 1000, Width: 1000}, geom.SplitMaxArea, 0, 2)

	f, _ := tr.bestFit(500, 1000, false, scoreBestArea)
	tr.allocate(f, 500, 1000)
	assert.Equal(t, 1, tr.sinceMerge)

	f, _ = tr.bestFit(100, 100, false, scoreBestArea)
	tr.allocate(f, 100, 100)
	assert.Equal(t, 0, tr.sinceMerge, "merge pass resets the counter")
}

func TestFreeTracker_SortedByYThenX(t *testing.T) {
	tr := &freeTracker{regions: []geom.Rect{
		{X: 0, Y: 600, Length: 10, Width: 10},
		{X: 500, Y: 0, Length: 10, Width: 10},
		{X: 100, Y: 0, Length: 10, Width: 10},
	}}
	got := tr.sorted()
	assert.Equal(t, 100.0, got[0].X)
	assert.Equal(t, 500.0, got[1].X)
	assert.Equal(t, 600.0, got[2].Y)
}
