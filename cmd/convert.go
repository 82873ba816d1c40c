package cmd

import (
	"fmt"

	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/spf13/cobra"
)

var convDir string

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst-name>",
	Short: "Rewrite a table in another format (csv, tsv, xlsx; .gz or .zst)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		dir := convDir
		if dir == "" {
			dir = cfg.DataDir
		}
		path, err := table.Persist(t, args[1], dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Converted %s -> %s (%d rows, %d columns)\n", args[0], path, t.Rows(), len(t.Names()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convDir, "dir", "", "output directory (default: data_dir from config)")
}
