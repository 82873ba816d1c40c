package plotting

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/table"
)

// Columns read and written by PromoEffects.
const (
	ColPromo            = "Promo"
	ColSales            = "Sales"
	ColCustomers        = "Customers"
	ColSalesPerCustomer = "SalesPerCustomer"
)

// PromoGroup holds the per-group means for one value of the promo flag.
type PromoGroup struct {
	Promo            string  `json:"promo" yaml:"promo"`
	Rows             int     `json:"rows" yaml:"rows"`
	Sales            float64 `json:"sales" yaml:"sales"`
	Customers        float64 `json:"customers" yaml:"customers"`
	SalesPerCustomer float64 `json:"sales_per_customer" yaml:"sales_per_customer"`
}

// PromoSummary is the outcome of PromoEffects, groups ordered by promo value.
type PromoSummary struct {
	Groups []PromoGroup `json:"groups" yaml:"groups"`
}

// PromoEffects adds SalesPerCustomer to t, averages sales, customers and
// sales per customer for each promo value, and shows one bar chart per
// average. Missing values are skipped when averaging.
func PromoEffects(d Display, t *table.Table) (*PromoSummary, error) {
	keys, keyOK, err := t.Texts(ColPromo)
	if err != nil {
		return nil, err
	}
	sales, err := t.Floats(ColSales)
	if err != nil {
		return nil, err
	}
	customers, err := t.Floats(ColCustomers)
	if err != nil {
		return nil, err
	}

	rows := map[string][]int{}
	for i, k := range keys {
		if keyOK[i] {
			rows[k] = append(rows[k], i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoValues, ColPromo)
	}

	spc := make([]float64, len(sales))
	for i := range sales {
		if math.IsNaN(sales[i]) || math.IsNaN(customers[i]) || customers[i] == 0 {
			spc[i] = math.NaN()
			continue
		}
		spc[i] = sales[i] / customers[i]
	}
	if err := t.SetFloats(ColSalesPerCustomer, spc); err != nil {
		return nil, fmt.Errorf("add %s: %w", ColSalesPerCustomer, err)
	}

	order := make([]string, 0, len(rows))
	for k := range rows {
		order = append(order, k)
	}
	sortKeys(order)

	sum := &PromoSummary{}
	for _, k := range order {
		idx := rows[k]
		sum.Groups = append(sum.Groups, PromoGroup{
			Promo:            k,
			Rows:             len(idx),
			Sales:            groupMean(sales, idx),
			Customers:        groupMean(customers, idx),
			SalesPerCustomer: groupMean(spc, idx),
		})
	}

	for _, agg := range []struct {
		title, ylabel string
		value         func(PromoGroup) float64
	}{
		{"Average Sales by Promo", "Average Sales", func(g PromoGroup) float64 { return g.Sales }},
		{"Average Customers by Promo", "Average Customers", func(g PromoGroup) float64 { return g.Customers }},
		{"Average Sales per Customer by Promo", "Average Sales per Customer", func(g PromoGroup) float64 { return g.SalesPerCustomer }},
	} {
		heights := make([]float64, len(sum.Groups))
		for i, g := range sum.Groups {
			heights[i] = agg.value(g)
		}
		p := newPlot(agg.title, ColPromo, agg.ylabel)
		bars, err := barChart(heights, len(heights))
		if err != nil {
			return sum, fmt.Errorf("%s: %w", agg.title, err)
		}
		p.Add(bars)
		p.NominalX(order...)
		if _, err := d.Show(Chart{Kind: "bar", Title: agg.title, Figure: p}); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func groupMean(vals []float64, idx []int) float64 {
	sub := make([]float64, len(idx))
	for i, j := range idx {
		sub[i] = vals[j]
	}
	return analysis.Mean(sub)
}

// sortKeys orders numerically when every key is a number.
func sortKeys(keys []string) {
	nums := make(map[string]float64, len(keys))
	for _, k := range keys {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			sort.Strings(keys)
			return
		}
		nums[k] = f
	}
	sort.Slice(keys, func(i, j int) bool { return nums[keys[i]] < nums[keys[j]] })
}
