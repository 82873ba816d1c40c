package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/edakit/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// TopValues is the number of most frequent values kept for columns with
// more distinct values than that.
const TopValues = 10

// Summary is the per-column profile of a table.
type Summary struct {
	Name    string          `json:"name" yaml:"name"`
	Rows    int             `json:"rows" yaml:"rows"`
	Columns []ColumnSummary `json:"columns" yaml:"columns"`
}

// ColumnSummary captures dtype, missingness and value frequencies of one column.
type ColumnSummary struct {
	Name     string `json:"col_name" yaml:"col_name"`
	DType    string `json:"col_dtype" yaml:"col_dtype"`
	Nulls    int    `json:"num_of_nulls" yaml:"num_of_nulls"`
	NonNulls int    `json:"num_of_non_nulls" yaml:"num_of_non_nulls"`
	Distinct int    `json:"num_of_distinct_values" yaml:"num_of_distinct_values"`
	// ValueCounts holds every value when Distinct <= TopValues, otherwise
	// the TopValues most frequent, by descending count.
	ValueCounts []ValueCount  `json:"distinct_values_counts" yaml:"distinct_values_counts"`
	Numeric     *NumericStats `json:"numeric,omitempty" yaml:"numeric,omitempty"`
}

type ValueCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// NumericStats are computed over present values only.
type NumericStats struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

// Summarize profiles every column of t in table order.
func Summarize(t *table.Table) (*Summary, error) {
	s := &Summary{Name: t.Name, Rows: t.Rows()}
	for _, name := range t.Names() {
		cs, err := summarizeColumn(t, name)
		if err != nil {
			return nil, err
		}
		s.Columns = append(s.Columns, cs)
	}
	return s, nil
}

func summarizeColumn(t *table.Table, name string) (ColumnSummary, error) {
	dtype, err := t.DType(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	vals, present, err := t.Texts(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	cs := ColumnSummary{Name: name, DType: dtype}
	counts := map[string]int{}
	var order []string
	for i, v := range vals {
		if !present[i] {
			cs.Nulls++
			continue
		}
		cs.NonNulls++
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	cs.Distinct = len(order)
	cs.ValueCounts = ValueCounts(order, counts, TopValues)

	if dtype != "object" {
		nums, err := t.Floats(name)
		if err != nil {
			return ColumnSummary{}, err
		}
		if xs := Present(nums); len(xs) > 0 {
			mean, std := stat.MeanStdDev(xs, nil)
			if len(xs) < 2 {
				std = 0
			}
			cs.Numeric = &NumericStats{Min: floats.Min(xs), Max: floats.Max(xs), Mean: mean, Std: std}
		}
	}
	return cs, nil
}

// ValueCounts orders values by descending count, ties in first-appearance
// order, and keeps at most limit entries when there are more than limit.
func ValueCounts(order []string, counts map[string]int, limit int) []ValueCount {
	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// JSON renders the summary as indented JSON.
func (s *Summary) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// YAML renders the summary as YAML.
func (s *Summary) YAML() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Markdown renders a compact report suitable for reading in a terminal.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Columns {
		total := c.Nulls + c.NonNulls
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Nulls) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, null %d, missing %.1f%%, distinct %d)",
			safeName(c.Name), c.DType, c.NonNulls, c.Nulls, missPct, c.Distinct))
		if c.Numeric != nil {
			b.WriteString(fmt.Sprintf(" · min %.4g, max %.4g, mean %.4g, std %.4g",
				c.Numeric.Min, c.Numeric.Max, c.Numeric.Mean, c.Numeric.Std))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[VALUE COUNTS]\n")
	for _, c := range s.Columns {
		label := "all"
		if c.Distinct > len(c.ValueCounts) {
			label = fmt.Sprintf("top %d of %d", len(c.ValueCounts), c.Distinct)
		}
		b.WriteString(fmt.Sprintf("- %s (%s): ", safeName(c.Name), label))
		if len(c.ValueCounts) == 0 {
			b.WriteString("(no values)")
		}
		for i, kv := range c.ValueCounts {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
