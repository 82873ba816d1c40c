package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
	"github.com/KaramelBytes/edakit/internal/logging"
	"github.com/KaramelBytes/edakit/internal/plotting"
	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDelimiter string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "edakit",
	Short: "edakit: quick exploratory analysis for tabular sales data",
	Long: `edakit summarizes CSV/TSV/XLSX tables, imputes missing values and renders
exploratory charts (distributions, pairwise relationships, correlations and
promotion effects) to image files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edakit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "field delimiter for delimited input (overrides config; 'tab' for tabs)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "xlsx worksheet name (default first sheet)")
}

// setup loads configuration and installs the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Debug: debug})
	return nil
}

func loadOptions() (table.LoadOptions, error) {
	opt := table.LoadOptions{NAValues: cfg.NAValues, Sheet: flagSheet}
	if len(opt.NAValues) == 0 {
		opt.NAValues = nil
	}
	raw := cfg.Delimiter
	if flagDelimiter != "" {
		raw = flagDelimiter
	}
	d, err := cfgpkg.ParseDelimiter(raw)
	if err != nil {
		return opt, fmt.Errorf("unsupported --delimiter: %w", err)
	}
	opt.Delimiter = d
	return opt, nil
}

func loadTable(path string) (*table.Table, error) {
	opt, err := loadOptions()
	if err != nil {
		return nil, err
	}
	return table.Load(path, opt)
}

// newDisplay returns the configured file display, or an in-memory one when
// dryRun is set.
func newDisplay(dryRun bool) (plotting.Display, error) {
	if dryRun {
		return plotting.NewMemoryDisplay(cfg.ChartFormat), nil
	}
	return plotting.NewFileDisplay(
		cfg.ChartsDir,
		cfg.ChartFormat,
		vg.Length(cfg.ChartWidthIn)*vg.Inch,
		vg.Length(cfg.ChartHeightIn)*vg.Inch,
	)
}
