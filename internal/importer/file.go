package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/PanelCut/internal/model"
)

// Formats lists the file extensions ImportFile understands.
var Formats = []string{".csv", ".tsv", ".txt", ".xlsx", ".dxf", ".cut", ".yaml", ".yml", ".json"}

// ImportFile picks an importer by file extension.
func ImportFile(path string, opts Options) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path, opts)
	case ".xlsx", ".xlsm":
		return ImportExcel(path, opts)
	case ".dxf":
		return ImportDXF(path, opts)
	case ".cut":
		return ImportCut(path, opts)
	case ".yaml", ".yml", ".json":
		return ImportCutList(path, opts)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q (supported: %s)", filepath.Ext(path), strings.Join(Formats, ", "))}}
}

// cutListFile is the on-disk YAML/JSON form of a cut list.
type cutListFile struct {
	ProjectName string               `json:"projectName" yaml:"project"`
	MaterialRef string               `json:"materialRef" yaml:"material"`
	Thickness   float64              `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	Pieces      []model.PieceRequest `json:"pieces" yaml:"pieces"`
}

// ImportCutList reads a cut list written as YAML or JSON. Pieces without a
// thickness take the file's thickness, then opts.DefaultThickness.
func ImportCutList(path string, opts Options) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}

	var f cutListFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot parse cut list: %v", err)}}
	}

	result := ImportResult{ProjectName: f.ProjectName, MaterialRef: f.MaterialRef}
	thickness := f.Thickness
	if thickness <= 0 {
		thickness = opts.DefaultThickness
	}
	for i, p := range f.Pieces {
		if p.Thickness <= 0 {
			p.Thickness = thickness
		}
		if p.Quantity == 0 {
			p.Quantity = 1
		}
		if p.Grain == "" {
			p.Grain = model.GrainFree
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Piece %d", i+1)
		}
		result.Pieces = append(result.Pieces, p)
	}
	if len(result.Pieces) == 0 {
		result.Errors = append(result.Errors, "No pieces found")
	}
	return result
}
