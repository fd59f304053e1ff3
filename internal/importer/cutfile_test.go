package importer

import (
	"strings"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

const kitchenCut = `# base unit
project "Kitchen"
material "MDF-19"
thickness 19

piece "Side" 720 x 560 qty 2 grain lengthwise band top,bottom ref "S-01"
piece "Shelf" 564x540 x 16 qty 3
piece "Door" 715 x 396 band T+B+L+R id "door"
`

func TestImportCutFromReader(t *testing.T) {
	result := ImportCutFromReader(strings.NewReader(kitchenCut), noDefaults)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.ProjectName != "Kitchen" || result.MaterialRef != "MDF-19" {
		t.Errorf("unexpected header: %q %q", result.ProjectName, result.MaterialRef)
	}
	if len(result.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(result.Pieces))
	}

	side := result.Pieces[0]
	if side.Length != 720 || side.Width != 560 || side.Thickness != 19 || side.Quantity != 2 {
		t.Errorf("unexpected side: %+v", side)
	}
	if side.Grain != model.GrainLengthwise || side.Reference != "S-01" {
		t.Errorf("unexpected side grain/ref: %s %q", side.Grain, side.Reference)
	}
	if side.Edging.String() != "T+B" {
		t.Errorf("expected T+B edging, got %s", side.Edging)
	}

	shelf := result.Pieces[1]
	if shelf.Length != 564 || shelf.Width != 540 || shelf.Thickness != 16 || shelf.Quantity != 3 {
		t.Errorf("unexpected shelf: %+v", shelf)
	}

	door := result.Pieces[2]
	if door.ID != "door" || door.Quantity != 1 || door.Edging.EdgeCount() != 4 {
		t.Errorf("unexpected door: %+v", door)
	}
}

func TestImportCutFromReader_SyntaxError(t *testing.T) {
	result := ImportCutFromReader(strings.NewReader(`piece "Side" 720 by 560`), noDefaults)
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Syntax error") {
		t.Errorf("expected a syntax error, got %v", result.Errors)
	}
	if len(result.Pieces) != 0 {
		t.Errorf("expected no pieces, got %d", len(result.Pieces))
	}
}

func TestImportCutFromReader_BadValues(t *testing.T) {
	input := `piece "A" 100 x 100 x 19 grain diagonal
piece "B" 100 x 100
piece "C" 100 x 100 x 19 qty 2
`
	result := ImportCutFromReader(strings.NewReader(input), noDefaults)
	if len(result.Pieces) != 1 || result.Pieces[0].Name != "C" {
		t.Fatalf("expected only piece C, got %+v", result.Pieces)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Line 1:") || !strings.HasPrefix(result.Errors[1], "Line 2:") {
		t.Errorf("expected line numbers in errors, got %v", result.Errors)
	}
}

func TestImportCutFromReader_DefaultThickness(t *testing.T) {
	result := ImportCutFromReader(strings.NewReader(`piece "Back" 700 x 500`), Options{DefaultThickness: 6})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Pieces[0].Thickness != 6 {
		t.Errorf("expected thickness 6, got %v", result.Pieces[0].Thickness)
	}
}

func TestImportCutFromReader_Empty(t *testing.T) {
	result := ImportCutFromReader(strings.NewReader("# nothing here\n"), noDefaults)
	if len(result.Errors) != 1 || result.Errors[0] != "No pieces found" {
		t.Errorf("expected no pieces error, got %v", result.Errors)
	}
}
