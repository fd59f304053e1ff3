package model

import "math"

// EdgeBandingSummary holds the edge banding required by a cut list.
type EdgeBandingSummary struct {
	TotalLinearMM    float64 `json:"totalLinearMm"`    // Banding length without waste
	TotalLinearM     float64 `json:"totalLinearM"`     // Same, in meters
	WastePercent     float64 `json:"wastePercent"`     // Waste percentage applied
	TotalWithWasteMM float64 `json:"totalWithWasteMm"` // Rounded up to the next mm
	TotalWithWasteM  float64 `json:"totalWithWasteM"`
	PieceCount       int     `json:"pieceCount"` // Individual pieces needing banding
	EdgeCount        int     `json:"edgeCount"`  // Banded edges over all pieces
}

// CalculateEdgeBanding totals the banding needed by the given pieces.
// wastePercent is added on top, e.g. 10 for 10%.
func CalculateEdgeBanding(pieces []PieceRequest, wastePercent float64) EdgeBandingSummary {
	var totalMM float64
	var pieceCount, edgeCount int

	for _, p := range pieces {
		if !p.Edging.HasAny() {
			continue
		}
		totalMM += p.Edging.LinearLength(p.Length, p.Width) * float64(p.Quantity)
		pieceCount += p.Quantity
		edgeCount += p.Edging.EdgeCount() * p.Quantity
	}

	withWaste := math.Ceil(totalMM * (1.0 + wastePercent/100.0))

	return EdgeBandingSummary{
		TotalLinearMM:    totalMM,
		TotalLinearM:     totalMM / 1000.0,
		WastePercent:     wastePercent,
		TotalWithWasteMM: withWaste,
		TotalWithWasteM:  withWaste / 1000.0,
		PieceCount:       pieceCount,
		EdgeCount:        edgeCount,
	}
}

// PieceEdgeBanding is the banding breakdown of one cut-list line.
type PieceEdgeBanding struct {
	Name          string  `json:"name"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Quantity      int     `json:"quantity"`
	Edges         string  `json:"edges"`         // e.g. "T+B+L+R"
	LengthPerUnit float64 `json:"lengthPerUnit"` // mm per piece
	TotalLength   float64 `json:"totalLength"`   // mm for all pieces
}

// CalculatePerPieceEdgeBanding returns the banding of every banded line.
func CalculatePerPieceEdgeBanding(pieces []PieceRequest) []PieceEdgeBanding {
	var results []PieceEdgeBanding
	for _, p := range pieces {
		if !p.Edging.HasAny() {
			continue
		}
		perUnit := p.Edging.LinearLength(p.Length, p.Width)
		results = append(results, PieceEdgeBanding{
			Name:          p.Name,
			Length:        p.Length,
			Width:         p.Width,
			Quantity:      p.Quantity,
			Edges:         p.Edging.String(),
			LengthPerUnit: perUnit,
			TotalLength:   perUnit * float64(p.Quantity),
		})
	}
	return results
}
