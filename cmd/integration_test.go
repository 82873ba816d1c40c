package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/edakit/internal/plotting"
	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainCSV = `Store,StoreType,Promo,Sales,Customers
1,a,0,5000,500
2,b,1,9000,600
3,a,1,8000,400
4,c,0,,300
5,b,0,4000,0
`

// isolate points HOME, data_dir and charts_dir at temp dirs and returns the
// working directory holding train.csv.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EDAKIT_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("EDAKIT_CHARTS_DIR", filepath.Join(home, "charts"))
	require.NoError(t, os.WriteFile(filepath.Join(home, "train.csv"), []byte(trainCSV), 0o644))
	return home
}

// resetFlags restores every flag to its default so state from one
// invocation does not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func TestCLI_Summarize(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "train.csv")

	out := runCmd(t, "summarize", src)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "- Sales: int64 (non-null 4, null 1")

	dst := filepath.Join(home, "summary.json")
	out = runCmd(t, "summarize", src, "--format", "json", "-o", dst)
	assert.Contains(t, out, "✓ Wrote summary")
	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	_, err = execute(t, "summarize", src, "--format", "html")
	assert.Error(t, err)
}

func TestCLI_ImputeMeanWritesTable(t *testing.T) {
	home := isolate(t)
	outDir := filepath.Join(home, "out", "nested")

	out := runCmd(t, "impute", filepath.Join(home, "train.csv"), "-c", "Sales", "-m", "mean", "--out", "clean.csv.gz", "--dir", outDir)
	assert.Contains(t, out, "✓ Saved 5 rows")

	tbl, err := table.Load(filepath.Join(outDir, "clean.csv.gz"), table.LoadOptions{})
	require.NoError(t, err)
	sales, err := tbl.Floats("Sales")
	require.NoError(t, err)
	assert.InDelta(t, 6500.0, sales[3], 1e-9)
}

func TestCLI_ImputeDefaultsToDataDir(t *testing.T) {
	home := isolate(t)
	runCmd(t, "impute", filepath.Join(home, "train.csv"), "-c", "StoreType", "-m", "mode")
	assert.FileExists(t, filepath.Join(home, "data", "train.csv"))
}

func TestCLI_ImputeRejects(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "train.csv")

	_, err := execute(t, "impute", src, "-c", "Sales", "-m", "average")
	assert.Error(t, err)
	_, err = execute(t, "impute", src)
	assert.Error(t, err)
	_, err = execute(t, "impute", src, "--domain-defaults")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
	assert.NoDirExists(t, filepath.Join(home, "data"))
}

func TestCLI_Convert(t *testing.T) {
	home := isolate(t)
	out := runCmd(t, "convert", filepath.Join(home, "train.csv"), "train.tsv.zst", "--dir", home)
	assert.Contains(t, out, "5 rows, 5 columns")

	tbl, err := table.Load(filepath.Join(home, "train.tsv.zst"), table.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Store", "StoreType", "Promo", "Sales", "Customers"}, tbl.Names())
}

func TestCLI_PlotWritesChartsAndManifest(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "train.csv")

	runCmd(t, "plot", "univariate", src, "StoreType")
	runCmd(t, "plot", "bivariate", src, "StoreType", "Sales")
	runCmd(t, "plot", "promo", src)

	raw, err := os.ReadFile(filepath.Join(home, "charts", plotting.ManifestName))
	require.NoError(t, err)
	var manifest []plotting.Shown
	require.NoError(t, json.Unmarshal(raw, &manifest))
	require.Len(t, manifest, 5)
	for _, s := range manifest {
		assert.FileExists(t, s.Path)
		assert.True(t, strings.HasSuffix(s.Path, ".png"), s.Path)
	}
}

func TestCLI_PlotDryRun(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "train.csv")

	out := runCmd(t, "plot", "correlation", src, "Customers", "Sales", "--dry-run")
	assert.Contains(t, out, "Correlation between Customers and Sales:")
	assert.Contains(t, out, "dry run")
	assert.NoDirExists(t, filepath.Join(home, "charts"))

	_, err := execute(t, "plot", "bivariate", src, "Sales", "StoreType", "--dry-run")
	assert.ErrorIs(t, err, plotting.ErrUnsupportedPair)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)

	runCmd(t, "config", "set", "chart_format", "svg")
	assert.FileExists(t, filepath.Join(home, ".edakit", "config.yaml"))
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "chart_format: svg")

	_, err := execute(t, "config", "set", "chart_format", "gif")
	assert.Error(t, err)
	_, err = execute(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestCLI_SummarizeBatchCollision(t *testing.T) {
	home := isolate(t)
	for _, d := range []string{"d1", "d2"} {
		require.NoError(t, os.MkdirAll(filepath.Join(home, d), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(home, d, "metrics.csv"), []byte("col1,col2\nA,1\nB,2\n"), 0o644))
	}
	outDir := filepath.Join(home, "summaries")

	out := runCmd(t, "summarize-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir)
	assert.Contains(t, out, "[1/2] Processing metrics.csv")
	assert.FileExists(t, filepath.Join(outDir, "metrics.summary.md"))
	assert.FileExists(t, filepath.Join(outDir, "metrics__2.summary.md"))

	_, err := execute(t, "summarize-batch", filepath.Join(home, "none*.csv"))
	assert.Error(t, err)
}

func TestSummaryBase(t *testing.T) {
	flagSheet = ""
	cases := map[string]string{
		"train.csv":         "train",
		"/x/store.xlsx":     "store",
		"sales.tsv.zst":     "sales",
		"archive.v2.csv.gz": "archive.v2",
	}
	for in, want := range cases {
		assert.Equal(t, want, summaryBase(in), in)
	}
}
