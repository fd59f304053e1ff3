package engine

import (
	"fmt"

	"github.com/piwi3910/PanelCut/internal/model"
)

// buildSheets converts run state into result sheets numbered from
// firstIndex. Free regions are listed by (y, x) and named s<index>-f<n>.
func buildSheets(states []*sheetState, firstIndex int) []model.SheetResult {
	sheets := make([]model.SheetResult, 0, len(states))
	for i, st := range states {
		idx := firstIndex + i

		var used float64
		for _, p := range st.placements {
			used += p.Area()
		}

		free := st.free.sorted()
		spaces := make([]model.FreeRegion, len(free))
		for k, r := range free {
			spaces[k] = model.FreeRegion{
				ID:     fmt.Sprintf("s%d-f%d", idx, k+1),
				X:      r.X,
				Y:      r.Y,
				Length: r.Length,
				Width:  r.Width,
			}
		}

		placements := make([]model.Placement, len(st.placements))
		copy(placements, st.placements)

		area := st.spec.Area()
		eff := 0.0
		if area > 0 {
			eff = used / area * 100.0
		}

		sheets = append(sheets, model.SheetResult{
			Index:        idx,
			StockID:      st.spec.ID,
			MaterialRef:  st.spec.MaterialRef,
			MaterialName: st.spec.MaterialName,
			Length:       st.spec.Length,
			Width:        st.spec.Width,
			Thickness:    st.spec.Thickness,
			Price:        st.spec.Price,
			Placements:   placements,
			FreeSpaces:   spaces,
			Efficiency:   eff,
			UsedArea:     used,
			WasteArea:    area - used,
		})
	}
	return sheets
}

// computeStats derives the run totals. Global efficiency is weighted by
// sheet area.
func computeStats(sheets []model.SheetResult) model.Stats {
	var st model.Stats
	var totalArea float64
	for _, s := range sheets {
		st.TotalPieces += len(s.Placements)
		st.TotalUsedArea += s.UsedArea
		st.TotalWasteArea += s.WasteArea
		st.TotalCost += s.Price
		totalArea += s.Area()
	}
	st.TotalSheets = len(sheets)
	if totalArea > 0 {
		st.GlobalEfficiency = st.TotalUsedArea / totalArea * 100.0
	}
	return st
}

// aggregate assembles the final result from per-group sheet results.
func aggregate(groups [][]*sheetState) *model.OptimizationResult {
	result := &model.OptimizationResult{Sheets: []model.SheetResult{}}
	for _, g := range groups {
		result.Sheets = append(result.Sheets, buildSheets(g, len(result.Sheets)+1)...)
	}
	result.Stats = computeStats(result.Sheets)
	return result
}
