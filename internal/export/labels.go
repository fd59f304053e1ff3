package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PanelCut/internal/model"
)

// LabelInfo is the data printed on, and QR-encoded into, one piece label.
type LabelInfo struct {
	PieceID    string  `json:"id"`
	Name       string  `json:"name"`
	Reference  string  `json:"ref,omitempty"`
	Length     float64 `json:"length_mm"`
	Width      float64 `json:"width_mm"`
	Thickness  float64 `json:"thickness_mm"`
	Material   string  `json:"material"`
	SheetIndex int     `json:"sheet"`
	Rotated    bool    `json:"rotated"`
	X          float64 `json:"x_mm"`
	Y          float64 `json:"y_mm"`
	Edging     string  `json:"edging"`
}

// Avery 5160 compatible layout: 3 columns x 10 rows on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos lists one label per placement in sheet order.
func CollectLabelInfos(result model.OptimizationResult) []LabelInfo {
	var labels []LabelInfo
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			labels = append(labels, LabelInfo{
				PieceID:    p.PieceID,
				Name:       p.Name,
				Reference:  p.Reference,
				Length:     p.Length,
				Width:      p.Width,
				Thickness:  sheet.Thickness,
				Material:   sheet.MaterialRef,
				SheetIndex: sheet.Index,
				Rotated:    p.Rotated,
				X:          p.X,
				Y:          p.Y,
				Edging:     p.Edging.String(),
			})
		}
	}
	return labels
}

// ExportLabels writes the label sheet PDF to path.
func ExportLabels(path string, result model.OptimizationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLabels(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLabels renders a QR-coded label for every placed piece.
func WriteLabels(w io.Writer, result model.OptimizationResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return ErrEmptyResult
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("render label for %s: %w", label.PieceID, err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render labels: %w", err)
	}
	return nil
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", info.SheetIndex, info.PieceID)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Name, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f x %g mm", info.Length, info.Width, info.Thickness)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	where := fmt.Sprintf("%s | Sheet %d @ (%.0f, %.0f)", info.PieceID, info.SheetIndex, info.X, info.Y)
	pdf.CellFormat(textW, 3, truncate(pdf, where, textW), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+12.5)
	extra := "Edging: " + info.Edging
	if info.Reference != "" {
		extra = info.Reference + " | " + extra
	}
	pdf.CellFormat(textW, 3, truncate(pdf, extra, textW), "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+16)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis to fit width at the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
