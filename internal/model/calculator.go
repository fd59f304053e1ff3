package model

import "math"

// PurchaseEstimate is a quick sheet count for a cut list, made without
// running the optimizer.
type PurchaseEstimate struct {
	StockID           string  `json:"stockId"`
	TotalPieceArea    float64 `json:"totalPieceArea"`    // sq mm, kerf included
	SheetArea         float64 `json:"sheetArea"`         // sq mm
	SheetsNeededExact float64 `json:"sheetsNeededExact"` // Fractional sheet count
	SheetsNeededMin   int     `json:"sheetsNeededMin"`   // Ceiling of the exact count
	SheetsWithWaste   int     `json:"sheetsWithWaste"`   // Recommended purchase
	WastePercent      float64 `json:"wastePercent"`
	EstimatedCost     float64 `json:"estimatedCost"`
	PricePerSheet     float64 `json:"pricePerSheet"`
	Kerf              float64 `json:"kerf"`
	SquareMeters      float64 `json:"squareMeters"` // Piece area in m²
}

const sqmmPerSquareMeter = 1_000_000.0

// CalculatePurchaseEstimate estimates how many sheets of spec to buy for the
// given pieces. Each piece is grown by the kerf on both axes and the result is
// padded by wastePercent.
func CalculatePurchaseEstimate(pieces []PieceRequest, spec StockSheetSpec, kerf, wastePercent float64) PurchaseEstimate {
	var pieceArea float64
	for _, p := range pieces {
		pieceArea += (p.Length + kerf) * (p.Width + kerf) * float64(p.Quantity)
	}

	est := PurchaseEstimate{
		StockID:        spec.ID,
		TotalPieceArea: pieceArea,
		WastePercent:   wastePercent,
		PricePerSheet:  spec.Price,
		Kerf:           kerf,
		SquareMeters:   pieceArea / sqmmPerSquareMeter,
	}

	sheetArea := spec.Area()
	if sheetArea <= 0 {
		return est
	}

	exact := pieceArea / sheetArea
	minSheets := int(math.Ceil(exact))
	withWaste := int(math.Ceil(exact * (1.0 + wastePercent/100.0)))
	if withWaste < minSheets {
		withWaste = minSheets
	}

	est.SheetArea = sheetArea
	est.SheetsNeededExact = exact
	est.SheetsNeededMin = minSheets
	est.SheetsWithWaste = withWaste
	est.EstimatedCost = float64(withWaste) * spec.Price
	return est
}
