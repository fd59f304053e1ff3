package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PanelCut/internal/export"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
)

func (a *app) optimizeCmd() *cobra.Command {
	var (
		out, pdfPath, labelsPath, xlsxPath, savePath string
		offcuts                                      bool
	)
	cmd := &cobra.Command{
		Use:   "optimize <cutlist>",
		Short: "Optimize a cut list onto stock sheets",
		Long: `Reads a cut list (CSV, TSV, XLSX, DXF, .cut, YAML, JSON or a saved
project) and lays its pieces onto the stock sheets of one material.`,
		Example: `  panelcut optimize kitchen.csv --material MDF --kerf 3.2 --pdf kitchen.pdf
  panelcut optimize wardrobe.cut --algorithm genetic --out -`,
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

			result, err := a.optimizer(cat, settings).Optimize(cmd.Context(), cl)
			if err != nil {
				return err
			}
			if out != "-" {
				printPlan(cmd.OutOrStdout(), cl, *result)
			}

			if out != "" {
				if err := writeJSON(cmd.OutOrStdout(), out, result); err != nil {
					return err
				}
			}
			if pdfPath != "" {
				opts := export.CutSheetOptions{ProjectName: cl.ProjectName, Settings: settings, ShowOffcuts: offcuts}
				if err := export.ExportPDF(pdfPath, *result, opts); err != nil {
					return err
				}
				a.logger.Info("cut sheets written", "path", pdfPath)
			}
			if labelsPath != "" {
				if err := export.ExportLabels(labelsPath, *result); err != nil {
					return err
				}
				a.logger.Info("labels written", "path", labelsPath)
			}
			if xlsxPath != "" {
				if err := export.ExportExcel(xlsxPath, *result); err != nil {
					return err
				}
				a.logger.Info("workbook written", "path", xlsxPath)
			}
			if savePath != "" {
				if err := project.Save(savePath, project.New(cl, settings, result)); err != nil {
					return err
				}
				a.rememberProject(savePath)
				a.logger.Info("project saved", "path", savePath)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	cutListFlags(fs)
	fs.StringVarP(&out, "out", "o", "", `Write the plan as JSON to a file, or "-" for stdout`)
	fs.StringVar(&pdfPath, "pdf", "", "Write printable cut sheets to a PDF file")
	fs.BoolVar(&offcuts, "offcuts", false, "Mark reusable offcuts on the PDF cut sheets")
	fs.StringVar(&labelsPath, "labels", "", "Write QR-coded piece labels to a PDF file")
	fs.StringVar(&xlsxPath, "xlsx", "", "Write the plan to an Excel workbook")
	fs.StringVar(&savePath, "save", "", "Save cut list, settings and plan as a project file")
	return cmd
}

func (a *app) rememberProject(path string) {
	recent, err := project.DefaultRecentPath()
	if err != nil {
		return
	}
	if _, err := project.AddRecent(recent, path); err != nil {
		a.logger.Warn("failed to update recent projects", "err", err)
	}
}

func printPlan(w io.Writer, cl model.CutList, result model.OptimizationResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %s", cl.ProjectName, cl.MaterialRef)))
	for _, s := range result.Sheets {
		line := fmt.Sprintf("  #%-3d %-24s %4d pieces  %6.2f%%", s.Index, s.StockID, len(s.Placements), s.Efficiency)
		if s.Price > 0 {
			line += fmt.Sprintf("  %8.2f", s.Price)
		}
		fmt.Fprintln(w, line)
	}
	st := result.Stats
	summary := fmt.Sprintf("  %d pieces on %d sheets, %.2f%% efficiency", st.TotalPieces, st.TotalSheets, st.GlobalEfficiency)
	if st.TotalCost > 0 {
		summary += fmt.Sprintf(", cost %.2f", st.TotalCost)
	}
	fmt.Fprintln(w, flagStyle.Render(summary))
}
