package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/edakit/internal/plotting"
	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/spf13/cobra"
)

var plotDryRun bool

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render exploratory charts to the charts directory",
}

// plotRun loads the table, builds the display and reports what was shown.
func plotRun(cmd *cobra.Command, path string, fn func(d plotting.Display, t *table.Table) error) error {
	t, err := loadTable(path)
	if err != nil {
		return err
	}
	d, err := newDisplay(plotDryRun)
	if err != nil {
		return err
	}
	if err := fn(d, t); err != nil {
		return err
	}
	report(cmd.OutOrStdout(), d)
	return nil
}

func report(w io.Writer, d plotting.Display) {
	switch d := d.(type) {
	case *plotting.MemoryDisplay:
		for _, c := range d.Charts {
			fmt.Fprintf(w, "✓ Rendered %q (%s, %d bytes, dry run)\n", c.Title, c.Format, c.Bytes)
		}
	case *plotting.FileDisplay:
		fmt.Fprintf(w, "✓ Charts in %s (%d total in manifest)\n", d.Dir, len(d.Manifest()))
	}
}

var plotUnivariateCmd = &cobra.Command{
	Use:   "univariate <file> <column>",
	Short: "Count plot (categorical) or histogram with density (numeric)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], func(d plotting.Display, t *table.Table) error {
			return plotting.Univariate(d, t, args[1])
		})
	},
}

var plotBivariateCmd = &cobra.Command{
	Use:   "bivariate <file> <col1> <col2>",
	Short: "Scatter plot (numeric vs numeric) or box plot (categorical vs numeric)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], func(d plotting.Display, t *table.Table) error {
			return plotting.Bivariate(d, t, args[1], args[2])
		})
	},
}

var plotMultivariateCmd = &cobra.Command{
	Use:   "multivariate <file> <columns...>",
	Short: "Pair plot for more than two columns, correlation heatmap otherwise",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], func(d plotting.Display, t *table.Table) error {
			return plotting.Multivariate(d, t, args[1:])
		})
	},
}

var plotCorrelationCmd = &cobra.Command{
	Use:   "correlation <file> <col1> <col2>",
	Short: "Scatter plot with regression line; prints the Pearson coefficient",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], func(d plotting.Display, t *table.Table) error {
			r, err := plotting.CorrelationPlot(d, t, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Correlation between %s and %s: %.2f\n", args[1], args[2], r)
			return nil
		})
	},
}

var plotPromoCmd = &cobra.Command{
	Use:   "promo <file>",
	Short: "Average sales, customers and sales per customer by Promo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], func(d plotting.Display, t *table.Table) error {
			sum, err := plotting.PromoEffects(d, t)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %8s %12s %12s %18s\n", "Promo", "Rows", "Sales", "Customers", "SalesPerCustomer")
			for _, g := range sum.Groups {
				fmt.Fprintf(w, "%-6s %8d %12s %12s %18s\n", g.Promo, g.Rows, num(g.Sales), num(g.Customers), num(g.SalesPerCustomer))
			}
			return nil
		})
	},
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.PersistentFlags().BoolVar(&plotDryRun, "dry-run", false, "render in memory without writing files")
	plotCmd.AddCommand(plotUnivariateCmd, plotBivariateCmd, plotMultivariateCmd, plotCorrelationCmd, plotPromoCmd)
}
