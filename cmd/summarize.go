package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	sumFormat     string
	sumOutputPath string
	sumHead       int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize every column of a CSV/TSV/XLSX table",
	Long: `Prints each column's name, dtype, null and non-null counts, distinct count
and value frequencies (all values, or the ten most frequent when a column has
more than ten distinct values).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		s, err := analysis.Summarize(t)
		if err != nil {
			return err
		}
		var out []byte
		switch strings.ToLower(sumFormat) {
		case "", "markdown", "md":
			md := s.Markdown()
			if sumHead > 0 {
				md += "\n[HEAD]\n" + headText(t.Head(sumHead).Records())
			}
			out = []byte(md)
		case "yaml", "yml":
			out, err = s.YAML()
		case "json":
			out, err = s.JSON()
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|yaml|json)", sumFormat)
		}
		if err != nil {
			return err
		}

		if sumOutputPath != "" {
			if err := os.WriteFile(sumOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func headText(records [][]string) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(strings.Join(r, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVar(&sumFormat, "format", "markdown", "output format: markdown|yaml|json")
	summarizeCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summarizeCmd.Flags().IntVar(&sumHead, "head", 0, "markdown only: append the first N rows")
}
