package export

import "github.com/piwi3910/PanelCut/internal/model"

// buildTestResult returns a two-sheet plan with banded and rotated pieces
// and free regions large enough to count as offcuts.
func buildTestResult() model.OptimizationResult {
	return model.OptimizationResult{
		Sheets: []model.SheetResult{
			{
				Index: 1, StockID: "MDF-19-2800x2070x19", MaterialRef: "MDF-19", MaterialName: "MDF 19mm",
				Length: 2800, Width: 2070, Thickness: 19, Price: 45,
				Placements: []model.Placement{
					{PieceID: "p1-1", Name: "Side", Reference: "S-01", X: 0, Y: 0, Length: 720, Width: 560, Edging: model.EdgeSet{Top: true, Bottom: true}},
					{PieceID: "p1-2", Name: "Side", Reference: "S-01", X: 720, Y: 0, Length: 720, Width: 560, Edging: model.EdgeSet{Top: true, Bottom: true}},
					{PieceID: "p2-1", Name: "Shelf", X: 1440, Y: 0, Length: 540, Width: 564, Rotated: true},
				},
				FreeSpaces: []model.FreeRegion{
					{ID: "s1-f1", X: 1980, Y: 0, Length: 820, Width: 2070},
					{ID: "s1-f2", X: 0, Y: 564, Length: 1980, Width: 1506},
				},
				UsedArea: 1111680, WasteArea: 4684320, Efficiency: 19.18,
			},
			{
				Index: 2, StockID: "PLY-18-1250x1250x18", MaterialRef: "PLY-18", MaterialName: "Birch Ply 18mm",
				Length: 1250, Width: 1250, Thickness: 18,
				Placements: []model.Placement{
					{PieceID: "p3-1", Name: "Back Panel", X: 0, Y: 0, Length: 800, Width: 500},
				},
				UsedArea: 400000, WasteArea: 1162500, Efficiency: 25.6,
			},
		},
		Stats: model.Stats{TotalPieces: 4, TotalSheets: 2, GlobalEfficiency: 20.6, TotalUsedArea: 1511680, TotalWasteArea: 5846820, TotalCost: 45},
	}
}
