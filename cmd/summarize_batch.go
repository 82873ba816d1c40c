package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sbOutDir string
	sbFormat string
	sbQuiet  bool
)

var summarizeBatchCmd = &cobra.Command{
	Use:   "summarize-batch <files...>",
	Short: "Summarize multiple CSV/TSV/XLSX files (globs allowed) into an output directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		ext, render, err := summaryRenderer(sbFormat)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(sbOutDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		w := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !sbQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loadTable(path)
			if err != nil {
				return err
			}
			s, err := analysis.Summarize(t)
			if err != nil {
				return err
			}
			out, err := render(s)
			if err != nil {
				return err
			}
			outFile := uniquePath(sbOutDir, summaryBase(path), ext)
			if err := os.WriteFile(outFile, out, 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !sbQuiet {
				fmt.Fprintf(w, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func summaryRenderer(format string) (string, func(*analysis.Summary) ([]byte, error), error) {
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		return "md", func(s *analysis.Summary) ([]byte, error) { return []byte(s.Markdown()), nil }, nil
	case "yaml", "yml":
		return "yaml", (*analysis.Summary).YAML, nil
	case "json":
		return "json", (*analysis.Summary).JSON, nil
	}
	return "", nil, fmt.Errorf("unsupported --format: %s (use markdown|yaml|json)", format)
}

// summaryBase strips every table extension: train.csv.gz -> train.
func summaryBase(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		switch strings.ToLower(ext) {
		case ".gz", ".zst", ".csv", ".tsv", ".tab", ".txt", ".xlsx":
			base = strings.TrimSuffix(base, ext)
			continue
		}
		break
	}
	if base == "" {
		base = "table"
	}
	if flagSheet != "" {
		base += "__sheet-" + utils.Slug(flagSheet)
	}
	return base
}

// uniquePath returns dir/base.summary.ext, adding __2, __3... when taken.
func uniquePath(dir, base, ext string) string {
	p := filepath.Join(dir, base+".summary."+ext)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.%s", base, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			slog.Warn("summary exists, writing alongside", "path", cand)
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(summarizeBatchCmd)
	summarizeBatchCmd.Flags().StringVar(&sbOutDir, "out-dir", "summaries", "directory for the summary files")
	summarizeBatchCmd.Flags().StringVar(&sbFormat, "format", "markdown", "output format: markdown|yaml|json")
	summarizeBatchCmd.Flags().BoolVar(&sbQuiet, "quiet", false, "suppress progress output")
}
