package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/piwi3910/PanelCut/internal/model"
)

// cutLexer tokenizes the .cut text format:
//
//	# kitchen carcass
//	project "Kitchen"
//	material "MDF-19"
//	thickness 19
//	piece "Side" 720 x 560 qty 2 grain lengthwise band top,bottom ref "S-01"
//	piece "Shelf" 564 x 540 x 16 qty 3
var cutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z_-]*`},
	{Name: "Punct", Pattern: `[,+]`},
})

type cutFile struct {
	Entries []*cutEntry `@@*`
}

type cutEntry struct {
	Project   *string   `  "project" @String`
	Material  *string   `| "material" @String`
	Thickness *float64  `| "thickness" @Number`
	Piece     *cutPiece `| @@`
}

type cutPiece struct {
	Pos       lexer.Position
	Name      string       `"piece" @String`
	Length    float64      `@Number "x"`
	Width     float64      `@Number`
	Thickness *float64     `( "x" @Number )?`
	Options   []*cutOption `@@*`
}

type cutOption struct {
	Quantity *int     `  "qty" @Number`
	Grain    *string  `| "grain" @Ident`
	Band     []string `| "band" @Ident ( ( "," | "+" ) @Ident )*`
	Ref      *string  `| "ref" @String`
	ID       *string  `| "id" @String`
}

var cutParser = participle.MustBuild[cutFile](
	participle.Lexer(cutLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// ImportCut reads a .cut file.
func ImportCut(path string, opts Options) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ImportCutFromReader(f, opts)
}

// ImportCutFromReader parses .cut text. A syntax error rejects the whole
// input; bad values on a piece line reject only that piece.
func ImportCutFromReader(r io.Reader, opts Options) ImportResult {
	file, err := cutParser.Parse("", r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Syntax error: %v", err)}}
	}

	result := ImportResult{}
	thickness := opts.DefaultThickness
	for _, entry := range file.Entries {
		switch {
		case entry.Project != nil:
			result.ProjectName = *entry.Project
		case entry.Material != nil:
			result.MaterialRef = *entry.Material
		case entry.Thickness != nil:
			thickness = *entry.Thickness
		case entry.Piece != nil:
			p, errs, warns := entry.Piece.toRequest(thickness)
			result.Warnings = append(result.Warnings, warns...)
			if len(errs) > 0 {
				result.Errors = append(result.Errors, errs...)
				continue
			}
			result.Pieces = append(result.Pieces, p)
		}
	}

	if len(result.Pieces) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No pieces found")
	}
	return result
}

func (c *cutPiece) toRequest(thickness float64) (model.PieceRequest, []string, []string) {
	label := fmt.Sprintf("Line %d", c.Pos.Line)
	p := model.PieceRequest{
		Name:      c.Name,
		Length:    c.Length,
		Width:     c.Width,
		Thickness: thickness,
		Quantity:  1,
		Grain:     model.GrainFree,
	}
	if c.Thickness != nil {
		p.Thickness = *c.Thickness
	}

	var errs, warns []string
	for _, o := range c.Options {
		switch {
		case o.Quantity != nil:
			p.Quantity = *o.Quantity
		case o.Grain != nil:
			g, err := model.ParseGrain(*o.Grain)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", label, err))
				continue
			}
			p.Grain = g
		case o.Band != nil:
			e, err := model.ParseEdgeSet(strings.Join(o.Band, ","))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", label, err))
				continue
			}
			p.Edging = e
		case o.Ref != nil:
			p.Reference = *o.Ref
		case o.ID != nil:
			p.ID = *o.ID
		}
	}

	if p.Thickness <= 0 {
		errs = append(errs, fmt.Sprintf("%s: piece %q has no thickness", label, p.Name))
	}
	if p.Quantity <= 0 {
		errs = append(errs, fmt.Sprintf("%s: piece %q quantity must be positive", label, p.Name))
	}
	if p.Name == "" {
		warns = append(warns, fmt.Sprintf("%s: unnamed piece", label))
	}
	return p, errs, warns
}
