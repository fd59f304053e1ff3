package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	err := ExportPDF(path, buildTestResult(), CutSheetOptions{
		ProjectName: "Kitchen",
		Settings:    model.DefaultSettings(),
		ShowOffcuts: true,
	})
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Two sheet pages plus the summary page.
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestWritePDF_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, buildTestResult(), CutSheetOptions{Settings: model.DefaultSettings()}); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:8])
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.OptimizationResult{}, CutSheetOptions{})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestExportPDF_ManySheets(t *testing.T) {
	result := buildTestResult()
	base := result.Sheets[1]
	for i := 3; i <= 30; i++ {
		s := base
		s.Index = i
		result.Sheets = append(result.Sheets, s)
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, result, CutSheetOptions{Settings: model.DefaultSettings()}); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
}

func TestPlacedBandingLength(t *testing.T) {
	// Two sides banded top and bottom: 4 x 720 mm.
	if got := placedBandingLength(buildTestResult()); got != 2880 {
		t.Errorf("expected 2880 mm of banding, got %v", got)
	}
}

func TestSheetLayout_FlipsYAxis(t *testing.T) {
	sheet := model.SheetResult{Length: 1000, Width: 500}
	l := newSheetLayout(sheet)

	_, py, _, ph := l.rect(0, 0, 100, 100)
	if diff := (py + ph) - (l.offsetY + l.canvasH); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("a piece at y=0 should sit on the bottom edge, got bottom %v want %v", py+ph, l.offsetY+l.canvasH)
	}
	if l.canvasW/l.canvasH != 2 {
		t.Errorf("expected aspect ratio 2, got %v", l.canvasW/l.canvasH)
	}
}
