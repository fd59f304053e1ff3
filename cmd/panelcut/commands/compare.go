package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PanelCut/internal/engine"
)

func (a *app) compareCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compare <cutlist>",
		Short: "Compare settings variants side by side",
		Long: `Optimizes the cut list once per what-if scenario (other algorithm,
other heuristics, trial stock selection, half kerf) and lists the results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			cl, settings, err := a.loadCutList(cmd, args[0])
			if err != nil {
				return err
			}

			scenarios := engine.BuildDefaultScenarios(settings)
			results, err := engine.CompareScenarios(cmd.Context(), cat, cl, scenarios, engine.WithLogger(a.logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out == "-" {
				return writeJSON(w, out, results)
			}
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-26s %7s %11s %8s %10s", "SCENARIO", "SHEETS", "EFFICIENCY", "WASTE", "COST")))
			for _, r := range results {
				if r.Err != "" {
					fmt.Fprintf(w, "%-26s %s\n", r.Scenario.Name, errorStyle.Render(r.Err))
					continue
				}
				fmt.Fprintf(w, "%-26s %7d %10.2f%% %7.2f%% %10.2f\n",
					r.Scenario.Name, r.SheetsUsed, r.GlobalEfficiency, r.WastePercent, r.TotalCost)
			}

			if out != "" {
				return writeJSON(w, out, results)
			}
			return nil
		},
	}
	cutListFlags(cmd.Flags())
	cmd.Flags().StringVarP(&out, "out", "o", "", `Write the comparison as JSON to a file, or "-" for stdout`)
	return cmd
}
