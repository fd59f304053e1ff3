package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/piwi3910/PanelCut/internal/config"
	"github.com/piwi3910/PanelCut/internal/telemetry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF99"))
	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F5F"))
)

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger

	shutdownTelemetry telemetry.Shutdown
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{}
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panelcut",
		Short: "Panel cut list optimizer",
		Long: `PanelCut - Panel Cutting Optimizer

Lays rectangular pieces onto stock sheets using as few sheets as possible.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default $HOME/.panelcut.yaml)")
	pf.String("catalog", "", "Stock catalog file (default $HOME/.panelcut/catalog.yaml)")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("otel-endpoint", "", "OTLP/HTTP collector URL")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	cmd.SetHelpFunc(renderHelp)

	cmd.AddCommand(
		a.optimizeCmd(),
		a.compareCmd(),
		a.estimateCmd(),
		a.catalogCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return cmd
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"catalog":       "catalog_path",
	"log-format":    "log.format",
	"otel-endpoint": "telemetry.endpoint",
	"material":      "default_material",
	"thickness":     "default_thickness",
	"addr":          "server.addr",
	"base-url":      "server.base_url",
	"share-backend": "share.backend",
	"share-ttl":     "share.ttl",
	"bucket":        "share.bucket",
	"prefix":        "share.prefix",
}

func (a *app) initConfig(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := applySettingsFlags(cmd.Flags(), &cfg.Settings); err != nil {
		return err
	}
	a.cfg = cfg

	verbose, _ := cmd.Flags().GetBool("verbose")
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log, verbose)

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry.ServiceName, Version, cfg.Telemetry.Endpoint)
	if err != nil {
		return err
	}
	a.shutdownTelemetry = shutdown
	return nil
}

func (a *app) close() {
	if a.shutdownTelemetry == nil {
		return
	}
	if err := a.shutdownTelemetry(context.Background()); err != nil && a.logger != nil {
		a.logger.Warn("telemetry shutdown failed", "err", err)
	}
}

func newLogger(w io.Writer, lc config.LogConfig, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func renderHelp(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("PANELCUT %s", Version)))
	fmt.Fprintln(out, cmd.Short)
	fmt.Fprintln(out)

	fmt.Fprintln(out, titleStyle.Render("USAGE"))
	fmt.Fprintf(out, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(out, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(out, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(out)
	}

	if cmd.Example != "" {
		fmt.Fprintln(out, titleStyle.Render("EXAMPLES"))
		fmt.Fprintln(out, cmd.Example)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		line := fmt.Sprintf("  --%-16s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			line += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(out, flagStyle.Render(line))
	})
	fmt.Fprintln(out)
}
