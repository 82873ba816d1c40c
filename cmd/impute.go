package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/spf13/cobra"
)

var (
	impColumn         string
	impMethod         string
	impDomainDefaults bool
	impOut            string
	impDir            string
)

var imputeCmd = &cobra.Command{
	Use:   "impute <file>",
	Short: "Fill missing values and save the table",
	Long: `Fills missing values of one column with its mean, median or mode, or
applies the store dataset defaults (--domain-defaults), then writes the table
to --dir/--out. The output format follows the --out extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case impDomainDefaults && impColumn != "":
			return errors.New("use either --column/--method or --domain-defaults")
		case !impDomainDefaults && impColumn == "":
			return errors.New("--column is required unless --domain-defaults is set")
		}
		// Reject a bad method before reading the file.
		if !impDomainDefaults {
			if _, err := analysis.ParseMethod(impMethod); err != nil {
				return err
			}
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		if impDomainDefaults {
			_, err = analysis.ImputeDomainDefaults(t)
		} else {
			_, err = analysis.Impute(t, impColumn, impMethod)
		}
		if err != nil {
			return err
		}

		name := impOut
		if name == "" {
			name = filepath.Base(args[0])
		}
		dir := impDir
		if dir == "" {
			dir = cfg.DataDir
		}
		path, err := table.Persist(t, name, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %d rows to %s\n", t.Rows(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(imputeCmd)
	imputeCmd.Flags().StringVarP(&impColumn, "column", "c", "", "column to impute")
	imputeCmd.Flags().StringVarP(&impMethod, "method", "m", "mean", "imputation method: mean|median|mode")
	imputeCmd.Flags().BoolVar(&impDomainDefaults, "domain-defaults", false, "apply the store dataset defaults (competition modes, promo2 zeros, 'No Promo')")
	imputeCmd.Flags().StringVar(&impOut, "out", "", "output file name (default: input file name)")
	imputeCmd.Flags().StringVar(&impDir, "dir", "", "output directory (default: data_dir from config)")
}
