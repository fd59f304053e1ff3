package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PanelCut/internal/model"
)

const (
	sheetsTab     = "Sheets"
	placementsTab = "Placements"
)

// ExportExcel writes the plan as a workbook with one row per sheet and one
// row per placement.
func ExportExcel(path string, result model.OptimizationResult) error {
	if len(result.Sheets) == 0 {
		return ErrEmptyResult
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetsTab); err != nil {
		return err
	}
	if _, err := f.NewSheet(placementsTab); err != nil {
		return err
	}

	rows := [][]interface{}{{"Sheet", "Stock", "Material", "Length", "Width", "Thickness", "Pieces", "Efficiency %", "Used Area", "Waste Area", "Price"}}
	for _, s := range result.Sheets {
		rows = append(rows, []interface{}{s.Index, s.StockID, s.MaterialName, s.Length, s.Width, s.Thickness, len(s.Placements), round2(s.Efficiency), s.UsedArea, s.WasteArea, s.Price})
	}
	st := result.Stats
	rows = append(rows, []interface{}{"Total", "", "", "", "", "", st.TotalPieces, round2(st.GlobalEfficiency), st.TotalUsedArea, st.TotalWasteArea, st.TotalCost})
	if err := writeRows(f, sheetsTab, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Sheet", "Piece", "Name", "Reference", "X", "Y", "Length", "Width", "Rotated", "Edging"}}
	for _, s := range result.Sheets {
		for _, p := range s.Placements {
			rows = append(rows, []interface{}{s.Index, p.PieceID, p.Name, p.Reference, p.X, p.Y, p.Length, p.Width, p.Rotated, p.Edging.String()})
		}
	}
	if err := writeRows(f, placementsTab, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
