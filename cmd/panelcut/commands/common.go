package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/piwi3910/PanelCut/internal/catalog"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/importer"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
)

// cutListFlags registers the flags shared by commands that read a cut list.
func cutListFlags(fs *pflag.FlagSet) {
	fs.StringP("material", "m", "", "Material reference to cut from (overrides the file)")
	fs.Float64("thickness", 0, "Thickness for pieces that have none, in mm")
	fs.Float64("kerf", 0, "Blade kerf in mm")
	fs.String("algorithm", "", "Optimizer: greedy or genetic")
	fs.String("heuristic", "", "Region scoring: best-area, best-short-side or best-long-side")
	fs.String("split", "", "Split rule: max-area, shorter-leftover or longer-leftover")
	fs.String("order", "", "Piece order: area-desc, longest-side-desc or input")
	fs.String("stock-selection", "", "New sheet choice: smallest or trial")
	fs.Int64("seed", 0, "Seed for the genetic search")
}

// applySettingsFlags copies explicitly set settings flags onto s.
func applySettingsFlags(fs *pflag.FlagSet, s *model.Settings) error {
	if fs.Changed("kerf") {
		v, err := fs.GetFloat64("kerf")
		if err != nil {
			return err
		}
		s.Kerf = v
	}
	str := func(name string, set func(string)) error {
		if !fs.Changed(name) {
			return nil
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		set(v)
		return nil
	}
	for _, err := range []error{
		str("algorithm", func(v string) { s.Algorithm = model.Algorithm(v) }),
		str("heuristic", func(v string) { s.Heuristic = model.Heuristic(v) }),
		str("split", func(v string) { s.Split = geom.SplitRule(v) }),
		str("order", func(v string) { s.Order = model.Order(v) }),
		str("stock-selection", func(v string) { s.StockSelection = model.StockSelection(v) }),
	} {
		if err != nil {
			return err
		}
	}
	if fs.Changed("seed") {
		v, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		s.Genetic.Seed = v
	}
	return s.Validate()
}

// loadCatalog reads the configured catalog file. Without one, the file at
// the default path is used when present, else the built-in catalog.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	path := a.cfg.CatalogPath
	if path == "" {
		p, err := catalog.DefaultPath()
		if err != nil {
			return catalog.Default(), nil
		}
		if _, err := os.Stat(p); err != nil {
			a.logger.Debug("using built-in catalog", "missing", p)
			return catalog.Default(), nil
		}
		path = p
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	a.logger.Debug("catalog loaded", "path", path, "materials", len(c.Materials))
	return c, nil
}

// loadCutList reads a cut list in any import format, or a saved project.
// It returns the settings to optimize with: the configured settings, or a
// project's saved settings, with explicit flags applied on top.
func (a *app) loadCutList(cmd *cobra.Command, path string) (model.CutList, model.Settings, error) {
	settings := a.cfg.Settings
	var cl model.CutList

	if strings.HasSuffix(strings.ToLower(path), project.Extension) {
		p, err := project.Load(path)
		if err != nil {
			return model.CutList{}, settings, err
		}
		cl, settings = p.CutList, p.Settings
		if err := applySettingsFlags(cmd.Flags(), &settings); err != nil {
			return model.CutList{}, settings, err
		}
	} else {
		res := importer.ImportFile(path, importer.Options{DefaultThickness: a.cfg.DefaultThickness})
		for _, w := range res.Warnings {
			a.logger.Warn("import warning", "file", path, "detail", w)
		}
		if len(res.Errors) > 0 {
			return model.CutList{}, settings, fmt.Errorf("failed to import %s:\n  %s", path, strings.Join(res.Errors, "\n  "))
		}
		cl = res.CutList(a.cfg.DefaultMaterial)
	}

	if cmd.Flags().Changed("material") {
		cl.MaterialRef = a.cfg.DefaultMaterial
	}
	if cl.ProjectName == "" {
		base := filepath.Base(path)
		cl.ProjectName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if cl.MaterialRef == "" {
		return model.CutList{}, settings, fmt.Errorf("no material for %s: pass --material or set default_material", path)
	}
	return cl, settings, nil
}

func (a *app) optimizer(cat engine.Catalog, settings model.Settings) *engine.Optimizer {
	return engine.New(cat, engine.WithSettings(settings), engine.WithLogger(a.logger))
}

// writeJSON writes v to path, or to w when path is "-".
func writeJSON(w io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
