package model

import "sort"

// Offcut is a free region large enough to keep for a later job.
type Offcut struct {
	ID          string  `json:"id"`         // Free region id, e.g. "s1-f2"
	SheetIndex  int     `json:"sheetIndex"` // 1-based index of the source sheet
	StockID     string  `json:"stockId"`
	MaterialRef string  `json:"materialRef"`
	Thickness   float64 `json:"thickness"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Price       float64 `json:"price"` // Share of the sheet price, proportional to area
}

// Area returns the area of the offcut in square mm.
func (o Offcut) Area() float64 {
	return o.Length * o.Width
}

// ToStockSheetSpec turns the offcut into a stock spec so it can be offered
// as stock in a later run.
func (o Offcut) ToStockSheetSpec() StockSheetSpec {
	return StockSheetSpec{
		ID:           "offcut-" + o.ID,
		MaterialRef:  o.MaterialRef,
		MaterialName: "Offcut " + o.ID,
		Length:       o.Length,
		Width:        o.Width,
		Thickness:    o.Thickness,
		Price:        o.Price,
	}
}

// MinOffcutDimension is the shortest side (mm) a remnant needs to be kept.
const MinOffcutDimension = 50.0

// MinOffcutArea is the smallest area (sq mm) a remnant needs to be kept.
const MinOffcutArea = 10000.0 // 100mm x 100mm equivalent

// DetectOffcuts returns the free regions of a sheet that meet the minimum
// dimension and area, largest first.
func DetectOffcuts(sr SheetResult, minDimension, minArea float64) []Offcut {
	var offcuts []Offcut
	sheetArea := sr.Area()

	for _, f := range sr.FreeSpaces {
		if f.Length < minDimension || f.Width < minDimension || f.Area() < minArea {
			continue
		}
		o := Offcut{
			ID:          f.ID,
			SheetIndex:  sr.Index,
			StockID:     sr.StockID,
			MaterialRef: sr.MaterialRef,
			Thickness:   sr.Thickness,
			X:           f.X,
			Y:           f.Y,
			Length:      f.Length,
			Width:       f.Width,
		}
		if sr.Price > 0 && sheetArea > 0 {
			o.Price = o.Area() / sheetArea * sr.Price
		}
		offcuts = append(offcuts, o)
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts collects the offcuts of every sheet in a result, sheet by
// sheet.
func DetectAllOffcuts(result OptimizationResult, minDimension, minArea float64) []Offcut {
	var all []Offcut
	for _, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, minDimension, minArea)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in square mm.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
