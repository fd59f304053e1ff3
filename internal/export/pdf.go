// Package export renders optimization results as printable documents: cut
// sheet diagrams, QR-coded piece labels and a spreadsheet cut list.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PanelCut/internal/model"
)

// ErrEmptyResult is returned when there is nothing to export.
var ErrEmptyResult = errors.New("no sheets to export")

// pieceColor is an RGB fill for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// CutSheetOptions adds context to the cut sheet document.
type CutSheetOptions struct {
	ProjectName string
	Settings    model.Settings
	// ShowOffcuts outlines reusable free regions on each sheet.
	ShowOffcuts bool
}

// ExportPDF writes the cut sheet document to path.
func ExportPDF(path string, result model.OptimizationResult, opts CutSheetOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDF(f, result, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePDF renders one page per sheet with a scaled layout diagram, followed
// by a summary page.
func WritePDF(w io.Writer, result model.OptimizationResult, opts CutSheetOptions) error {
	if len(result.Sheets) == 0 {
		return ErrEmptyResult
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(documentTitle(opts.ProjectName), true)

	for _, sheet := range result.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, sheet, opts)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, opts)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func documentTitle(project string) string {
	if project == "" {
		return "Cutting Plan"
	}
	return "Cutting Plan - " + project
}

// sheetLayout maps sheet coordinates, origin at the lower-left corner, to
// page coordinates.
type sheetLayout struct {
	scale, offsetX, offsetY, canvasW, canvasH float64
}

func newSheetLayout(sheet model.SheetResult) sheetLayout {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/sheet.Length, drawHeight/sheet.Width)
	l := sheetLayout{
		scale:   scale,
		canvasW: sheet.Length * scale,
		canvasH: sheet.Width * scale,
		offsetY: drawAreaTop,
	}
	l.offsetX = marginLeft + (drawWidth-l.canvasW)/2
	return l
}

// rect returns the page rectangle of a sheet-space rectangle.
func (l sheetLayout) rect(x, y, length, width float64) (px, py, pw, ph float64) {
	pw = length * l.scale
	ph = width * l.scale
	px = l.offsetX + x*l.scale
	py = l.offsetY + l.canvasH - (y*l.scale + ph)
	return px, py, pw, ph
}

func renderSheetPage(pdf *fpdf.Fpdf, sheet model.SheetResult, opts CutSheetOptions) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%.0f x %.0f x %g mm)", sheet.Index, sheet.MaterialName, sheet.Length, sheet.Width, sheet.Thickness)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used: %.0f mm² | Waste: %.0f mm² | Efficiency: %.1f%% | Stock: %s",
		len(sheet.Placements), sheet.UsedArea, sheet.WasteArea, sheet.Efficiency, sheet.StockID)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	l := newSheetLayout(sheet)

	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(l.offsetX, l.offsetY, l.canvasW, l.canvasH, "FD")

	if opts.ShowOffcuts {
		drawOffcuts(pdf, sheet, l)
	}

	for i, p := range sheet.Placements {
		col := pieceColors[i%len(pieceColors)]
		px, py, pw, ph := l.rect(p.X, p.Y, p.Length, p.Width)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")
		drawEdging(pdf, p.Edging, px, py, pw, ph)

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			name := p.Name
			if p.Reference != "" {
				name = p.Reference
			}
			dims := fmt.Sprintf("%.0fx%.0f", p.Length, p.Width)
			if p.Rotated {
				dims += " R"
			}

			nameW := pdf.GetStringWidth(name)
			dimsW := pdf.GetStringWidth(dims)
			if nameW < pw-2 {
				pdf.SetXY(px+(pw-nameW)/2, py+ph/2-4)
				pdf.CellFormat(nameW, 4, name, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, sheet, l)
	drawPieceLegend(pdf, sheet, l.offsetY+l.canvasH+6)
}

// drawEdging thickens the banded sides of a piece rectangle. Page y grows
// downward, so the piece's top edge is the rectangle's upper side.
func drawEdging(pdf *fpdf.Fpdf, e model.EdgeSet, px, py, pw, ph float64) {
	if !e.HasAny() {
		return
	}
	pdf.SetDrawColor(20, 20, 120)
	pdf.SetLineWidth(0.9)
	if e.Top {
		pdf.Line(px, py, px+pw, py)
	}
	if e.Bottom {
		pdf.Line(px, py+ph, px+pw, py+ph)
	}
	if e.Left {
		pdf.Line(px, py, px, py+ph)
	}
	if e.Right {
		pdf.Line(px+pw, py, px+pw, py+ph)
	}
	pdf.SetLineWidth(0.3)
}

// drawOffcuts outlines the reusable free regions with a hatch pattern.
func drawOffcuts(pdf *fpdf.Fpdf, sheet model.SheetResult, l sheetLayout) {
	for _, o := range model.DetectOffcuts(sheet, model.MinOffcutDimension, model.MinOffcutArea) {
		zx, zy, zw, zh := l.rect(o.X, o.Y, o.Length, o.Width)

		pdf.SetFillColor(235, 245, 235)
		pdf.SetDrawColor(0, 120, 0)
		pdf.SetLineWidth(0.2)
		pdf.Rect(zx, zy, zw, zh, "FD")
		drawHatchPattern(pdf, zx, zy, zw, zh)

		if zw > 20 && zh > 8 {
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(0, 100, 0)
			label := "OFFCUT " + o.ID
			labelW := pdf.GetStringWidth(label)
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(0, 150, 0)
	pdf.SetLineWidth(0.1)

	const spacing = 4.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations labels the sheet length below the diagram and
// its width, rotated, to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.SheetResult, l sheetLayout) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := fmt.Sprintf("%.0f mm", sheet.Length)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(l.offsetX+(l.canvasW-lw)/2, l.offsetY+l.canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := fmt.Sprintf("%.0f mm", sheet.Width)
	pdf.TransformBegin()
	pdf.TransformRotate(90, l.offsetX-3, l.offsetY+l.canvasH/2)
	ww := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(l.offsetX-3-ww/2, l.offsetY+l.canvasH/2-2)
	pdf.CellFormat(ww, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func drawPieceLegend(pdf *fpdf.Fpdf, sheet model.SheetResult, startY float64) {
	if len(sheet.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Placements {
		col := pieceColors[i%len(pieceColors)]
		label := fmt.Sprintf("%s %s (%.0fx%.0f)", p.PieceID, p.Name, p.Length, p.Width)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

type summaryItem struct {
	label string
	value string
}

func renderSummaryPage(pdf *fpdf.Fpdf, result model.OptimizationResult, opts CutSheetOptions) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, documentTitle(opts.ProjectName), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	st := result.Stats
	items := []summaryItem{
		{"Sheets Used", fmt.Sprintf("%d", st.TotalSheets)},
		{"Pieces Placed", fmt.Sprintf("%d", st.TotalPieces)},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", st.GlobalEfficiency)},
		{"Waste Area", fmt.Sprintf("%.0f mm²", st.TotalWasteArea)},
	}
	if st.TotalCost > 0 {
		items = append(items, summaryItem{"Material Cost", fmt.Sprintf("%.2f", st.TotalCost)})
	}
	if banding := placedBandingLength(result); banding > 0 {
		items = append(items, summaryItem{"Edge Banding", fmt.Sprintf("%.2f m", banding/1000)})
	}
	y = renderItems(pdf, "Overall Statistics", items, y)

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{18, 62, 50, 25, 30, 30, 52}
	headers := []string{"Sheet", "Material", "Dimensions", "Pieces", "Efficiency", "Price", "Used / Total Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range result.Sheets {
		if y > pageHeight-marginBottom-20 {
			pdf.AddPage()
			y = marginTop
		}
		row := []string{
			fmt.Sprintf("%d", sheet.Index),
			sheet.MaterialName,
			fmt.Sprintf("%.0f x %.0f x %g", sheet.Length, sheet.Width, sheet.Thickness),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%.1f%%", sheet.Efficiency),
			fmt.Sprintf("%.2f", sheet.Price),
			fmt.Sprintf("%.0f / %.0f mm²", sheet.UsedArea, sheet.Area()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	s := opts.Settings
	y += 8
	renderItems(pdf, "Optimizer Settings", []summaryItem{
		{"Kerf", fmt.Sprintf("%.1f mm", s.Kerf)},
		{"Heuristic", string(s.Heuristic)},
		{"Split Rule", string(s.Split)},
		{"Piece Order", string(s.Order)},
		{"Stock Selection", string(s.StockSelection)},
		{"Algorithm", string(s.Algorithm)},
	}, y)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PanelCut", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func renderItems(pdf *fpdf.Fpdf, heading string, items []summaryItem, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, heading, "", 0, "L", false, 0, "")
	y += 9

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}

// placedBandingLength is the edge banding in mm over every placement.
// Placement flags already follow the laid orientation.
func placedBandingLength(result model.OptimizationResult) float64 {
	var total float64
	for _, s := range result.Sheets {
		for _, p := range s.Placements {
			total += p.Edging.LinearLength(p.Length, p.Width)
		}
	}
	return total
}

func labelFontSize(w, h float64) float64 {
	switch minDim := math.Min(w, h); {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
