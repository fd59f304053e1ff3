package model

import "fmt"

// InvalidPieceError reports a cut-list line that cannot be optimized as
// entered: a non-positive dimension, a zero quantity, a thickness no stock
// sheet offers, or a duplicate id.
type InvalidPieceError struct {
	PieceID   string
	Reference string
	Length    float64
	Width     float64
	Thickness float64
	Quantity  int
	Reason    string
}

func (e *InvalidPieceError) Error() string {
	return fmt.Sprintf("invalid piece %s (%gx%gx%g, qty %d): %s",
		pieceLabel(e.PieceID, e.Reference), e.Length, e.Width, e.Thickness, e.Quantity, e.Reason)
}

// UnknownMaterialError reports a material reference the catalog has no
// stock sheets for.
type UnknownMaterialError struct {
	MaterialRef string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("unknown material %q: catalog returned no stock sheets", e.MaterialRef)
}

// UnplaceablePieceError reports a piece that does not fit any stock sheet of
// its thickness even when the sheet is empty.
type UnplaceablePieceError struct {
	PieceID   string
	Reference string
	Length    float64
	Width     float64
	Thickness float64
	Grain     Grain
}

func (e *UnplaceablePieceError) Error() string {
	return fmt.Sprintf("piece %s (%gx%gx%g, grain %s) does not fit any stock sheet",
		pieceLabel(e.PieceID, e.Reference), e.Length, e.Width, e.Thickness, e.Grain)
}

func pieceLabel(id, ref string) string {
	if ref == "" {
		return id
	}
	return fmt.Sprintf("%s [%s]", id, ref)
}
