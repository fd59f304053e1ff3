// Package catalog supplies the stock sheets offered per material. It backs
// the engine's Catalog interface with an in-memory list that can be loaded
// from and saved to YAML or JSON files.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/PanelCut/internal/model"
)

// Material is one board type and the sheet sizes it is sold in.
type Material struct {
	Ref    string                 `yaml:"ref" json:"ref"`
	Name   string                 `yaml:"name" json:"name"`
	Sheets []model.StockSheetSpec `yaml:"sheets" json:"sheets"`
}

// Catalog is the set of known materials.
type Catalog struct {
	Materials []Material `yaml:"materials" json:"materials"`
}

func sheet(length, width, thickness, price float64) model.StockSheetSpec {
	return model.StockSheetSpec{Length: length, Width: width, Thickness: thickness, Price: price}
}

// Default returns a catalog populated with common panel stock.
func Default() *Catalog {
	return &Catalog{Materials: []Material{
		{Ref: "MDF", Name: "MDF", Sheets: []model.StockSheetSpec{
			sheet(2800, 2070, 19, 62.00),
			sheet(2800, 2070, 16, 54.00),
			sheet(2800, 2070, 12, 44.00),
			sheet(2440, 1220, 19, 34.00),
			sheet(1220, 610, 19, 11.50),
		}},
		{Ref: "PLY", Name: "Birch Plywood", Sheets: []model.StockSheetSpec{
			sheet(2500, 1250, 18, 89.00),
			sheet(2500, 1250, 12, 64.00),
			sheet(1250, 1250, 18, 47.00),
		}},
		{Ref: "MEL-W", Name: "White Melamine Chipboard", Sheets: []model.StockSheetSpec{
			sheet(2800, 2070, 19, 49.00),
			sheet(2800, 2070, 8, 31.00),
		}},
		{Ref: "OSB", Name: "OSB/3", Sheets: []model.StockSheetSpec{
			sheet(2500, 1250, 18, 27.00),
		}},
	}}
}

// SpecID returns the id given to a stock sheet that has none.
func SpecID(ref string, s model.StockSheetSpec) string {
	return fmt.Sprintf("%s-%gx%gx%g", ref, s.Length, s.Width, s.Thickness)
}

// FindMaterial returns the material with the given reference, compared
// case-insensitively, or nil.
func (c *Catalog) FindMaterial(ref string) *Material {
	ref = strings.TrimSpace(ref)
	for i := range c.Materials {
		if strings.EqualFold(c.Materials[i].Ref, ref) {
			return &c.Materials[i]
		}
	}
	return nil
}

// MaterialRefs returns every material reference, sorted.
func (c *Catalog) MaterialRefs() []string {
	refs := make([]string, len(c.Materials))
	for i, m := range c.Materials {
		refs[i] = m.Ref
	}
	sort.Strings(refs)
	return refs
}

// ResolveStockSheetSpecs returns the sheets offered for materialRef, in
// catalog order, with ids and material fields filled in. An unknown
// material yields an empty slice and no error.
func (c *Catalog) ResolveStockSheetSpecs(_ context.Context, materialRef string) ([]model.StockSheetSpec, error) {
	m := c.FindMaterial(materialRef)
	if m == nil {
		return nil, nil
	}
	specs := make([]model.StockSheetSpec, len(m.Sheets))
	for i, s := range m.Sheets {
		s.MaterialRef = m.Ref
		if s.MaterialName == "" {
			s.MaterialName = m.Name
		}
		if s.ID == "" {
			s.ID = SpecID(m.Ref, s)
		}
		specs[i] = s
	}
	return specs, nil
}

// AddSheet appends a stock sheet to the material ref, creating the material
// when it does not exist yet.
func (c *Catalog) AddSheet(ref, name string, s model.StockSheetSpec) {
	if m := c.FindMaterial(ref); m != nil {
		m.Sheets = append(m.Sheets, s)
		return
	}
	c.Materials = append(c.Materials, Material{Ref: ref, Name: name, Sheets: []model.StockSheetSpec{s}})
}

// Merge adds the materials and sheets of other that c lacks. Sheets are
// matched by their resolved id.
func (c *Catalog) Merge(other *Catalog) {
	for _, om := range other.Materials {
		m := c.FindMaterial(om.Ref)
		if m == nil {
			c.Materials = append(c.Materials, om)
			continue
		}
		ids := make(map[string]bool, len(m.Sheets))
		for _, s := range m.Sheets {
			ids[sheetKey(m.Ref, s)] = true
		}
		for _, s := range om.Sheets {
			if key := sheetKey(m.Ref, s); !ids[key] {
				m.Sheets = append(m.Sheets, s)
				ids[key] = true
			}
		}
	}
}

func sheetKey(ref string, s model.StockSheetSpec) string {
	if s.ID != "" {
		return s.ID
	}
	return SpecID(ref, s)
}
