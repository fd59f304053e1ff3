package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PanelCut/internal/catalog"
)

func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show or create the stock sheet catalog",
	}
	cmd.AddCommand(a.catalogListCmd(), a.catalogInitCmd(), a.catalogImportCmd())
	return cmd
}

func (a *app) catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List materials and their stock sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ref := range cat.MaterialRefs() {
				m := cat.FindMaterial(ref)
				fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s  %s", m.Ref, m.Name)))
				specs, err := cat.ResolveStockSheetSpecs(cmd.Context(), ref)
				if err != nil {
					return err
				}
				for _, s := range specs {
					fmt.Fprintf(w, "  %-24s %6g x %-6g %4gmm  %8.2f\n", s.ID, s.Length, s.Width, s.Thickness, s.Price)
				}
			}
			return nil
		},
	}
}

func (a *app) catalogInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in catalog to a file for editing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.catalogPath(args)
			if err != nil {
				return err
			}
			if !force {
				if _, err := catalog.Load(path); err == nil {
					return fmt.Errorf("catalog %s already exists (use --force to overwrite)", path)
				}
			}
			if err := catalog.Save(path, catalog.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing catalog")
	return cmd
}

func (a *app) catalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge materials from another catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.catalogPath(nil)
			if err != nil {
				return err
			}
			existing, err := catalog.LoadOrCreate(path)
			if err != nil {
				return err
			}
			merged, err := catalog.Import(args[0], existing)
			if err != nil {
				return err
			}
			if err := catalog.Save(path, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s now has %d materials\n", path, len(merged.Materials))
			return nil
		},
	}
}

// catalogPath returns the catalog file a command writes to: an explicit
// argument, the configured path or the default path.
func (a *app) catalogPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.cfg.CatalogPath != "" {
		return a.cfg.CatalogPath, nil
	}
	return catalog.DefaultPath()
}
