// Package importer reads cut lists from spreadsheets (CSV, Excel), DXF
// drawings, YAML/JSON files and the plain-text .cut format. Importers never
// fail on a bad row: row problems are collected in the result so the caller
// can show them all at once.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PanelCut/internal/model"
)

// ImportResult holds the pieces read from a source plus any row-level
// problems. A row with an error contributes no piece.
type ImportResult struct {
	MaterialRef string // Set by formats that name a material
	ProjectName string
	Pieces      []model.PieceRequest
	Errors      []string
	Warnings    []string
}

// CutList returns the imported pieces as a cut list for material, unless the
// source named its own material.
func (r ImportResult) CutList(material string) model.CutList {
	if r.MaterialRef != "" {
		material = r.MaterialRef
	}
	return model.CutList{ProjectName: r.ProjectName, MaterialRef: material, Pieces: r.Pieces}
}

// Options tunes how rows become pieces.
type Options struct {
	// DefaultThickness applies to rows that have no thickness column or value.
	DefaultThickness float64
}

// Column roles recognized in a header row.
const (
	colName      = "name"
	colLength    = "length"
	colWidth     = "width"
	colThickness = "thickness"
	colQuantity  = "quantity"
	colGrain     = "grain"
	colEdging    = "edging"
	colReference = "reference"
)

// positionalColumns is the column order assumed when there is no header.
var positionalColumns = []string{colName, colLength, colWidth, colThickness, colQuantity, colGrain, colEdging, colReference}

// headerAliases maps column roles to their accepted header spellings (lowercase).
var headerAliases = map[string][]string{
	colName:      {"name", "label", "part", "part name", "description", "desc", "piece", "item"},
	colLength:    {"length", "len", "l", "long", "x"},
	colWidth:     {"width", "w", "wide", "y"},
	colThickness: {"thickness", "thick", "t", "th", "mm", "depth"},
	colQuantity:  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	colGrain:     {"grain", "grain direction", "direction", "grain dir", "orientation"},
	colEdging:    {"edging", "edge", "edges", "banding", "edge banding", "band"},
	colReference: {"reference", "ref", "code", "part no", "part number", "sku"},
}

// ColumnMapping maps column roles to indices in a row; -1 means absent.
type ColumnMapping map[string]int

func (m ColumnMapping) index(role string) int {
	if i, ok := m[role]; ok {
		return i
	}
	return -1
}

// DetectCSVDelimiter returns the most likely delimiter among comma,
// semicolon, tab and pipe: the one giving the most rows with the same
// (greater than one) column count as the first row.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		if weighted := score*10 + firstCols; weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns maps a header row to column roles, matching aliases
// case-insensitively. When the row is not a header it returns the positional
// mapping and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{}
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			if _, taken := mapping[role]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					mapping[role] = i
					break
				}
			}
		}
	}

	if len(mapping) == 0 {
		positional := ColumnMapping{}
		for i, role := range positionalColumns {
			positional[role] = i
		}
		return positional, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts both "12.5" and "12,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// parseRow turns one row into a piece. It returns the piece, an error
// message that rejects the row, and a warning that does not.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, pieceCount int, opts Options) (model.PieceRequest, string, string) {
	p := model.PieceRequest{
		Name:      getCell(row, mapping.index(colName)),
		Reference: getCell(row, mapping.index(colReference)),
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("Piece %d", pieceCount+1)
	}

	number := func(role, label string) (float64, string) {
		s := getCell(row, mapping.index(role))
		if s == "" {
			return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, label)
		}
		v, err := parseNumber(s)
		if err != nil {
			return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, label, s)
		}
		return v, ""
	}

	var msg string
	if p.Length, msg = number(colLength, "length"); msg != "" {
		return p, msg, ""
	}
	if p.Width, msg = number(colWidth, "width"); msg != "" {
		return p, msg, ""
	}

	p.Thickness = opts.DefaultThickness
	if s := getCell(row, mapping.index(colThickness)); s != "" {
		if p.Thickness, msg = number(colThickness, "thickness"); msg != "" {
			return p, msg, ""
		}
	}
	if p.Thickness <= 0 {
		return p, fmt.Sprintf("%s: Missing thickness value", rowLabel), ""
	}

	qtyStr := getCell(row, mapping.index(colQuantity))
	p.Quantity = 1
	if qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return p, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
		}
		p.Quantity = qty
	}

	if p.Length <= 0 || p.Width <= 0 || p.Quantity <= 0 {
		return p, fmt.Sprintf("%s: Length, width, and quantity must be positive", rowLabel), ""
	}

	var warnings []string
	p.Grain = model.GrainFree
	if s := getCell(row, mapping.index(colGrain)); s != "" {
		if g, err := model.ParseGrain(s); err == nil {
			p.Grain = g
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown grain direction '%s', defaulting to free", rowLabel, s))
		}
	}
	if s := getCell(row, mapping.index(colEdging)); s != "" {
		if e, err := model.ParseEdgeSet(s); err == nil {
			p.Edging = e
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown edging '%s', ignoring", rowLabel, s))
		}
	}

	return p, "", strings.Join(warnings, "; ")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports pieces from a CSV file, detecting the delimiter and
// mapping columns by header names.
func ImportCSV(path string, opts Options) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	return importCSV(bytes.NewReader(data), delimiter, opts, warnings)
}

// ImportCSVFromReader imports pieces from CSV data with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune, opts Options) ImportResult {
	return importCSV(r, delimiter, opts, nil)
}

func importCSV(r io.Reader, delimiter rune, opts Options, warnings []string) ImportResult {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}, Warnings: warnings}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}, Warnings: warnings}
	}
	return importFromRows(records, "Line", opts, warnings)
}

// ImportExcel imports pieces from the first sheet of an .xlsx workbook.
func ImportExcel(path string, opts Options) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	if len(rows) == 0 {
		return ImportResult{Errors: []string{"Sheet is empty"}}
	}
	return importFromRows(rows, "Row", opts, nil)
}

// importFromRows is shared by the CSV and Excel importers.
func importFromRows(rows [][]string, rowPrefix string, opts Options, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, role := range []string{colLength, colWidth} {
			if mapping.index(role) == -1 {
				missing = append(missing, role)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still has a non-numeric length column.
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		p, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Pieces), opts)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Pieces = append(result.Pieces, p)
	}
	return result
}
