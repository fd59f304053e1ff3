package export

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PanelCut/internal/model"
)

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	if err := ExportExcel(path, buildTestResult()); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	sheets, err := f.GetRows(sheetsTab)
	if err != nil {
		t.Fatalf("cannot read %s: %v", sheetsTab, err)
	}
	// Header, two sheets, totals.
	if len(sheets) != 4 {
		t.Fatalf("expected 4 rows in %s, got %d", sheetsTab, len(sheets))
	}
	if sheets[1][1] != "MDF-19-2800x2070x19" {
		t.Errorf("unexpected stock id cell: %q", sheets[1][1])
	}

	placements, err := f.GetRows(placementsTab)
	if err != nil {
		t.Fatalf("cannot read %s: %v", placementsTab, err)
	}
	if len(placements) != 5 {
		t.Fatalf("expected 5 rows in %s, got %d", placementsTab, len(placements))
	}
	if placements[3][1] != "p2-1" || placements[3][2] != "Shelf" {
		t.Errorf("unexpected placement row: %v", placements[3])
	}
}

func TestExportExcel_EmptyResult(t *testing.T) {
	err := ExportExcel(filepath.Join(t.TempDir(), "x.xlsx"), model.OptimizationResult{})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}
