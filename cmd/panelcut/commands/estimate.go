package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PanelCut/internal/model"
)

func (a *app) estimateCmd() *cobra.Command {
	var waste float64
	cmd := &cobra.Command{
		Use:   "estimate <cutlist>",
		Short: "Estimate sheets to buy without optimizing",
		Long: `Estimates the sheet count per stock size from piece area alone, padded by a
waste allowance, and totals the edge banding the cut list needs.`,
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
			specs, err := cat.ResolveStockSheetSpecs(cmd.Context(), cl.MaterialRef)
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				return &model.UnknownMaterialError{MaterialRef: cl.MaterialRef}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-26s %8s %8s %8s %10s", "STOCK", "EXACT", "MIN", "BUY", "COST")))
			for _, spec := range specs {
				pieces := piecesOfThickness(cl.Pieces, spec.Thickness, settings.ThicknessTolerance)
				if len(pieces) == 0 {
					continue
				}
				est := model.CalculatePurchaseEstimate(pieces, spec, settings.Kerf, waste)
				fmt.Fprintf(w, "%-26s %8.2f %8d %8d %10.2f\n",
					est.StockID, est.SheetsNeededExact, est.SheetsNeededMin, est.SheetsWithWaste, est.EstimatedCost)
			}

			eb := model.CalculateEdgeBanding(cl.Pieces, waste)
			if eb.EdgeCount > 0 {
				fmt.Fprintln(w, flagStyle.Render(fmt.Sprintf("  Edge banding: %.2f m on %d edges of %d pieces (%.2f m with waste)",
					eb.TotalLinearM, eb.EdgeCount, eb.PieceCount, eb.TotalWithWasteM)))
			}
			return nil
		},
	}
	cutListFlags(cmd.Flags())
	cmd.Flags().Float64Var(&waste, "waste", 10, "Waste allowance in percent")
	return cmd
}

func piecesOfThickness(pieces []model.PieceRequest, thickness, tolerance float64) []model.PieceRequest {
	var out []model.PieceRequest
	for _, p := range pieces {
		if math.Abs(p.Thickness-thickness) <= tolerance {
			out = append(out, p)
		}
	}
	return out
}
