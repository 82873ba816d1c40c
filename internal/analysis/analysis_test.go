package analysis_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustTable(t *testing.T, records [][]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords("test.csv", records, nil)
	require.NoError(t, err)
	return tbl
}

func column(name string, vals ...string) [][]string {
	out := [][]string{{name}}
	for _, v := range vals {
		out = append(out, []string{v})
	}
	return out
}

func TestImputeMeanExample(t *testing.T) {
	tbl := mustTable(t, column("Sales", "10", "20", "", "40"))

	got, err := analysis.Impute(tbl, "Sales", "mean")
	require.NoError(t, err)
	assert.Same(t, tbl, got, "imputation mutates in place")

	vals, err := tbl.Floats("Sales")
	require.NoError(t, err)
	assert.InDelta(t, 23.333333333, vals[2], 1e-9)
	for _, v := range vals {
		assert.False(t, math.IsNaN(v))
	}
}

func TestImputeMedianAndMode(t *testing.T) {
	tbl := mustTable(t, [][]string{
		{"a", "b", "c"},
		{"1", "3", "x"},
		{"", "1", "y"},
		{"3", "", "y"},
		{"10", "1", ""},
		{"", "3", "x"},
	})

	_, err := analysis.Impute(tbl, "a", "median")
	require.NoError(t, err)
	a, _ := tbl.Floats("a")
	assert.Equal(t, []float64{1, 3, 3, 10, 3}, a)

	// 1 and 3 both appear twice: the smaller wins.
	_, err = analysis.Impute(tbl, "b", "mode")
	require.NoError(t, err)
	b, _ := tbl.Floats("b")
	assert.Equal(t, 1.0, b[2])
	dt, _ := tbl.DType("b")
	assert.Equal(t, "int64", dt)

	_, err = analysis.Impute(tbl, "c", "mode")
	require.NoError(t, err)
	v, ok, _ := tbl.Cell("c", 3)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestImputeInvalidMethodLeavesTable(t *testing.T) {
	tbl := mustTable(t, column("Sales", "10", "", "30"))
	before := tbl.Records()

	_, err := analysis.Impute(tbl, "Sales", "bogus")
	assert.ErrorIs(t, err, analysis.ErrInvalidMethod)
	assert.Equal(t, before, tbl.Records())
}

func TestImputeErrors(t *testing.T) {
	tbl := mustTable(t, [][]string{{"Sales", "StoreType"}, {"1", "a"}, {"", ""}})

	_, err := analysis.Impute(tbl, "Customers", "mean")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)

	_, err = analysis.Impute(tbl, "StoreType", "median")
	assert.ErrorIs(t, err, table.ErrNotNumeric)

	empty := mustTable(t, column("x", "", ""))
	_, err = analysis.Impute(empty, "x", "mode")
	assert.ErrorIs(t, err, analysis.ErrNoValues)
}

func TestParseMethod(t *testing.T) {
	m, err := analysis.ParseMethod(" Median ")
	require.NoError(t, err)
	assert.Equal(t, analysis.MethodMedian, m)
	_, err = analysis.ParseMethod("avg")
	assert.ErrorIs(t, err, analysis.ErrInvalidMethod)
}

func storeRecords() [][]string {
	return [][]string{
		{"Store", "CompetitionOpenSinceMonth", "CompetitionOpenSinceYear", "Promo2", "Promo2SinceWeek", "Promo2SinceYear", "PromoInterval"},
		{"1", "9", "2008", "0", "", "", ""},
		{"2", "11", "2007", "1", "13", "2010", "Jan,Apr,Jul,Oct"},
		{"3", "", "", "1", "14", "2011", "Jan,Apr,Jul,Oct"},
		{"4", "9", "2009", "0", "", "", ""},
		{"5", "", "2009", "1", "45", "2009", "Feb,May,Aug,Nov"},
	}
}

func TestImputeDomainDefaults(t *testing.T) {
	tbl := mustTable(t, storeRecords())

	_, err := analysis.ImputeDomainDefaults(tbl)
	require.NoError(t, err)

	week, _ := tbl.Floats("Promo2SinceWeek")
	assert.Equal(t, []float64{0, 13, 14, 0, 45}, week)
	year, _ := tbl.Floats("Promo2SinceYear")
	assert.Equal(t, 0.0, year[0])

	iv, ok, _ := tbl.Cell("PromoInterval", 0)
	assert.True(t, ok)
	assert.Equal(t, analysis.NoPromo, iv)

	month, _ := tbl.Floats("CompetitionOpenSinceMonth")
	assert.Equal(t, 9.0, month[2])
	assert.Equal(t, 9.0, month[4])
	cy, _ := tbl.Floats("CompetitionOpenSinceYear")
	assert.Equal(t, 2009.0, cy[2])
}

func TestImputeDomainDefaultsAllMissingPromo2(t *testing.T) {
	recs := storeRecords()
	for i := 1; i < len(recs); i++ {
		recs[i][4], recs[i][5] = "", ""
	}
	tbl := mustTable(t, recs)

	_, err := analysis.ImputeDomainDefaults(tbl)
	require.NoError(t, err)
	for _, col := range []string{analysis.ColPromo2SinceWeek, analysis.ColPromo2SinceYear} {
		cat, err := tbl.IsCategorical(col)
		require.NoError(t, err)
		assert.False(t, cat, col)
		vals, err := tbl.Floats(col)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, vals, col)
	}
}

func TestImputeDomainDefaultsMissingColumn(t *testing.T) {
	recs := storeRecords()
	for i := range recs {
		recs[i] = recs[i][:6] // drop PromoInterval
	}
	tbl := mustTable(t, recs)
	before := tbl.Records()

	_, err := analysis.ImputeDomainDefaults(tbl)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
	assert.Equal(t, before, tbl.Records())
}

func TestSummarizeFullCounts(t *testing.T) {
	tbl := mustTable(t, [][]string{
		{"StoreType", "Sales"},
		{"a", "5"},
		{"c", ""},
		{"a", "7"},
		{"", "7"},
		{"d", "9"},
	})
	s, err := analysis.Summarize(tbl)
	require.NoError(t, err)
	require.Len(t, s.Columns, 2)

	st := s.Columns[0]
	assert.Equal(t, "object", st.DType)
	assert.Equal(t, 1, st.Nulls)
	assert.Equal(t, 4, st.NonNulls)
	assert.Equal(t, 3, st.Distinct)
	assert.Equal(t, []analysis.ValueCount{{Value: "a", Count: 2}, {Value: "c", Count: 1}, {Value: "d", Count: 1}}, st.ValueCounts)
	covered := 0
	for _, vc := range st.ValueCounts {
		covered += vc.Count
	}
	assert.Equal(t, st.NonNulls, covered)

	sales := s.Columns[1]
	assert.Equal(t, "int64", sales.DType)
	require.NotNil(t, sales.Numeric)
	assert.Equal(t, 5.0, sales.Numeric.Min)
	assert.Equal(t, 9.0, sales.Numeric.Max)
	assert.InDelta(t, 7.0, sales.Numeric.Mean, 1e-12)
}

func TestSummarizeTopTen(t *testing.T) {
	var vals []string
	// value i appears i+1 times for i in 0..14
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			vals = append(vals, fmt.Sprintf("v%02d", i))
		}
	}
	tbl := mustTable(t, column("Code", vals...))
	s, err := analysis.Summarize(tbl)
	require.NoError(t, err)

	c := s.Columns[0]
	assert.Equal(t, 15, c.Distinct)
	require.Len(t, c.ValueCounts, analysis.TopValues)
	assert.Equal(t, analysis.ValueCount{Value: "v14", Count: 15}, c.ValueCounts[0])
	assert.Equal(t, analysis.ValueCount{Value: "v05", Count: 6}, c.ValueCounts[9])
	for i := 1; i < len(c.ValueCounts); i++ {
		assert.GreaterOrEqual(t, c.ValueCounts[i-1].Count, c.ValueCounts[i].Count)
	}
}

func TestSummaryRenderings(t *testing.T) {
	tbl := mustTable(t, [][]string{{"StoreType", "Sales"}, {"a", "1"}, {"b", ""}})
	s, err := analysis.Summarize(tbl)
	require.NoError(t, err)

	md := s.Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "- Sales: int64 (non-null 1, null 1, missing 50.0%, distinct 1)")
	assert.Contains(t, md, "- StoreType (all): a(1), b(1)")

	y, err := s.YAML()
	require.NoError(t, err)
	var back analysis.Summary
	require.NoError(t, yaml.Unmarshal(y, &back))
	assert.Equal(t, "StoreType", back.Columns[0].Name)

	j, err := s.JSON()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(j), `"num_of_nulls": 1`))
}

func TestPearsonAndCorrelations(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, 2, 3, nan, 5}
	y := []float64{2, 4, 6, 100, 10}
	assert.InDelta(t, 1.0, analysis.Pearson(x, y), 1e-12)
	assert.True(t, math.IsNaN(analysis.Pearson([]float64{1}, []float64{2})))

	m := analysis.Correlations([]string{"x", "y"}, [][]float64{x, y})
	assert.Equal(t, 1.0, m.Values[0][0])
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
}

func TestMedianEven(t *testing.T) {
	assert.Equal(t, 2.5, analysis.Median([]float64{4, 1, 3, 2, math.NaN()}))
	assert.True(t, math.IsNaN(analysis.Mean(nil)))
}
