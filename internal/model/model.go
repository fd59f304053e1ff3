package model

import (
	"fmt"
	"strings"

	"github.com/piwi3910/PanelCut/internal/geom"
)

// Grain is the grain-direction constraint of a piece. Stock sheet grain runs
// along the sheet length.
type Grain string

const (
	GrainFree       Grain = "free"       // May be rotated 90 degrees
	GrainLengthwise Grain = "lengthwise" // Piece length runs with the sheet grain
	GrainWidthwise  Grain = "widthwise"  // Entered with the grain across the piece width
)

func (g Grain) String() string {
	if g == "" {
		return string(GrainFree)
	}
	return string(g)
}

// AllowsRotation reports whether a piece with this grain may be turned 90 degrees.
func (g Grain) AllowsRotation() bool {
	return g == "" || g == GrainFree
}

// ParseGrain accepts the canonical grain names plus the short spellings used
// in spreadsheets ("none", "l", "w", "length", "width").
func ParseGrain(s string) (Grain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free", "none", "any", "-":
		return GrainFree, nil
	case "lengthwise", "length", "l", "long":
		return GrainLengthwise, nil
	case "widthwise", "width", "w", "cross":
		return GrainWidthwise, nil
	}
	return "", fmt.Errorf("unknown grain direction %q", s)
}

// EdgeSet flags which logical edges of a piece receive edge banding. Top and
// bottom run along the piece length, left and right along its width.
type EdgeSet struct {
	Top    bool `json:"top" yaml:"top"`
	Bottom bool `json:"bottom" yaml:"bottom"`
	Left   bool `json:"left" yaml:"left"`
	Right  bool `json:"right" yaml:"right"`
}

// HasAny returns true if any edge is banded.
func (e EdgeSet) HasAny() bool {
	return e.Top || e.Bottom || e.Left || e.Right
}

// EdgeCount returns the number of banded edges.
func (e EdgeSet) EdgeCount() int {
	n := 0
	for _, b := range []bool{e.Top, e.Bottom, e.Left, e.Right} {
		if b {
			n++
		}
	}
	return n
}

// LinearLength returns the banding length for one piece of the given size.
func (e EdgeSet) LinearLength(length, width float64) float64 {
	var total float64
	if e.Top {
		total += length
	}
	if e.Bottom {
		total += length
	}
	if e.Left {
		total += width
	}
	if e.Right {
		total += width
	}
	return total
}

// Rotated remaps the flags for a piece turned 90 degrees counter-clockwise.
func (e EdgeSet) Rotated() EdgeSet {
	return EdgeSet{Top: e.Right, Bottom: e.Left, Left: e.Top, Right: e.Bottom}
}

// String renders the banded edges as e.g. "T+B+L", or "None".
func (e EdgeSet) String() string {
	var parts []string
	if e.Top {
		parts = append(parts, "T")
	}
	if e.Bottom {
		parts = append(parts, "B")
	}
	if e.Left {
		parts = append(parts, "L")
	}
	if e.Right {
		parts = append(parts, "R")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "+")
}

// ParseEdgeSet reads a banding list such as "top,bottom", "T+B+L+R", "all"
// or "none".
func ParseEdgeSet(s string) (EdgeSet, error) {
	var e EdgeSet
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "-", "0":
		return e, nil
	case "all", "4":
		return EdgeSet{Top: true, Bottom: true, Left: true, Right: true}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '+' || r == ' ' || r == ';' || r == '|'
	})
	for _, f := range fields {
		switch f {
		case "t", "top":
			e.Top = true
		case "b", "bottom":
			e.Bottom = true
		case "l", "left":
			e.Left = true
		case "r", "right":
			e.Right = true
		default:
			return EdgeSet{}, fmt.Errorf("unknown edge %q", f)
		}
	}
	return e, nil
}

// StockSheetSpec describes one purchasable stock panel. Specs are resolved
// from the catalog once per run and never mutated.
type StockSheetSpec struct {
	ID           string  `json:"id" yaml:"id,omitempty"`
	MaterialRef  string  `json:"materialRef" yaml:"material_ref,omitempty"`
	MaterialName string  `json:"materialName" yaml:"material_name,omitempty"`
	Length       float64 `json:"length" yaml:"length"`       // mm, along the grain
	Width        float64 `json:"width" yaml:"width"`         // mm
	Thickness    float64 `json:"thickness" yaml:"thickness"` // mm
	Price        float64 `json:"price,omitempty" yaml:"price,omitempty"`
}

// Area returns the sheet area in square mm.
func (s StockSheetSpec) Area() float64 {
	return s.Length * s.Width
}

// Rect returns the sheet outline anchored at the origin.
func (s StockSheetSpec) Rect() geom.Rect {
	return geom.Rect{Length: s.Length, Width: s.Width}
}

// PieceRequest is one line of a cut list.
type PieceRequest struct {
	ID        string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string  `json:"name" yaml:"name"`
	Reference string  `json:"reference,omitempty" yaml:"reference,omitempty"`
	Length    float64 `json:"length" yaml:"length"`
	Width     float64 `json:"width" yaml:"width"`
	Thickness float64 `json:"thickness" yaml:"thickness"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
	Grain     Grain   `json:"grain,omitempty" yaml:"grain,omitempty"`
	Edging    EdgeSet `json:"edging" yaml:"edging"`
}

// Area returns the area of a single piece in square mm.
func (p PieceRequest) Area() float64 {
	return p.Length * p.Width
}

// CutList is the set of pieces requested against one material.
type CutList struct {
	ProjectName string         `json:"projectName,omitempty" yaml:"project_name,omitempty"`
	MaterialRef string         `json:"materialRef" yaml:"material_ref"`
	Pieces      []PieceRequest `json:"pieces" yaml:"pieces"`
}

// TotalQuantity returns the number of piece instances the cut list expands to.
func (c CutList) TotalQuantity() int {
	n := 0
	for _, p := range c.Pieces {
		n += p.Quantity
	}
	return n
}

// PieceInstance is one unit of a PieceRequest waiting to be placed.
type PieceInstance struct {
	ID      string
	Request *PieceRequest
	// Seq is the instance's position in input order, used as the last tie-break.
	Seq int
}

func (p PieceInstance) Length() float64 { return p.Request.Length }
func (p PieceInstance) Width() float64  { return p.Request.Width }
func (p PieceInstance) Area() float64   { return p.Request.Area() }

// FreeRegion is an unused rectangle left on a sheet.
type FreeRegion struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

func (f FreeRegion) Rect() geom.Rect {
	return geom.Rect{X: f.X, Y: f.Y, Length: f.Length, Width: f.Width}
}

func (f FreeRegion) Area() float64 { return f.Length * f.Width }

// Placement records one piece instance positioned on a sheet. Length and
// Width are the dimensions as laid on the sheet, after any rotation.
type Placement struct {
	PieceID   string  `json:"pieceId"`
	Name      string  `json:"name"`
	Reference string  `json:"reference"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Rotated   bool    `json:"rotated"`
	Edging    EdgeSet `json:"edging"`
}

func (p Placement) Rect() geom.Rect {
	return geom.Rect{X: p.X, Y: p.Y, Length: p.Length, Width: p.Width}
}

func (p Placement) Area() float64 { return p.Length * p.Width }

// SheetResult is one physical sheet of the final plan.
type SheetResult struct {
	Index        int          `json:"index"` // 1-based, in opening order
	StockID      string       `json:"stockId"`
	MaterialRef  string       `json:"materialRef"`
	MaterialName string       `json:"materialName"`
	Length       float64      `json:"length"`
	Width        float64      `json:"width"`
	Thickness    float64      `json:"thickness"`
	Price        float64      `json:"price,omitempty"`
	Placements   []Placement  `json:"placements"`
	FreeSpaces   []FreeRegion `json:"freeSpaces"`
	Efficiency   float64      `json:"efficiency"` // 0-100, unrounded
	UsedArea     float64      `json:"usedArea"`
	WasteArea    float64      `json:"wasteArea"`
}

// Area returns the sheet area.
func (sr SheetResult) Area() float64 {
	return sr.Length * sr.Width
}

// Stats summarizes an optimization result.
type Stats struct {
	TotalPieces      int     `json:"totalPieces"`
	TotalSheets      int     `json:"totalSheets"`
	GlobalEfficiency float64 `json:"globalEfficiency"` // area-weighted, 0-100
	TotalUsedArea    float64 `json:"totalUsedArea"`
	TotalWasteArea   float64 `json:"totalWasteArea"`
	TotalCost        float64 `json:"totalCost,omitempty"`
}

// OptimizationResult is the complete cutting plan. It is treated as an
// immutable value once returned by the engine.
type OptimizationResult struct {
	Sheets []SheetResult `json:"sheets"`
	Stats  Stats         `json:"stats"`
}

// PlacementCount returns the number of placements across all sheets.
func (r OptimizationResult) PlacementCount() int {
	n := 0
	for _, s := range r.Sheets {
		n += len(s.Placements)
	}
	return n
}
