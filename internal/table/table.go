package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrColumnNotFound is returned when a column name is absent from the table.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when a numeric operation targets a categorical column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// naToken marks a missing cell when building gota series from text.
const naToken = "NaN"

// Table is an in-memory rectangular dataset with named, typed columns.
type Table struct {
	Name string
	df   dataframe.DataFrame
}

// New wraps an existing dataframe.
func New(name string, df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	t := &Table{Name: name, df: df}
	if err := t.floatEmptyColumns(); err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return t, nil
}

// floatEmptyColumns retypes columns with no present cell as float64. Type
// detection has nothing to go on there and would otherwise pick object.
func (t *Table) floatEmptyColumns() error {
	n := t.df.Nrow()
	if n == 0 {
		return nil
	}
	for _, name := range t.df.Names() {
		s := t.df.Col(name)
		if s.Type() != series.String || s.Len() != n {
			continue
		}
		empty := true
		for i := 0; i < n && empty; i++ {
			empty = s.Elem(i).IsNA()
		}
		if !empty {
			continue
		}
		recs := make([]string, n)
		for i := range recs {
			recs[i] = naToken
		}
		if err := t.SetColumn(series.New(recs, series.Float, name)); err != nil {
			return err
		}
	}
	return nil
}

// FromRecords builds a table from a header row followed by data rows.
// Cells equal to one of naValues are missing; nil uses DefaultNAValues.
func FromRecords(name string, records [][]string, naValues []string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("build table: no header row")
	}
	if naValues == nil {
		naValues = DefaultNAValues
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(naValues),
	)
	return New(name, df)
}

// Names returns column names in table order.
func (t *Table) Names() []string { return t.df.Names() }

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.df.Nrow() }

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.df.Col(name), nil
}

// DType returns the dtype name of a column: int64, float64, bool or object.
func (t *Table) DType(name string) (string, error) {
	s, err := t.Column(name)
	if err != nil {
		return "", err
	}
	return dtypeOf(s.Type()), nil
}

func dtypeOf(tp series.Type) string {
	switch tp {
	case series.Int:
		return "int64"
	case series.Float:
		return "float64"
	case series.Bool:
		return "bool"
	default:
		return "object"
	}
}

// IsCategorical reports whether the column holds object (text) values.
func (t *Table) IsCategorical(name string) (bool, error) {
	s, err := t.Column(name)
	if err != nil {
		return false, err
	}
	return s.Type() == series.String, nil
}

// IsInteger reports whether the column is integer typed.
func (t *Table) IsInteger(name string) (bool, error) {
	s, err := t.Column(name)
	if err != nil {
		return false, err
	}
	return s.Type() == series.Int, nil
}

// Cell returns the text form of row i of a column and whether it is present.
func (t *Table) Cell(name string, i int) (string, bool, error) {
	s, err := t.Column(name)
	if err != nil {
		return "", false, err
	}
	v, ok := cellText(s, i)
	return v, ok, nil
}

// Texts returns every cell of a column as text; missing cells are "".
func (t *Table) Texts(name string) ([]string, []bool, error) {
	s, err := t.Column(name)
	if err != nil {
		return nil, nil, err
	}
	n := s.Len()
	vals := make([]string, n)
	present := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i], present[i] = cellText(s, i)
	}
	return vals, present, nil
}

// Floats returns the numeric values of a column with NaN for missing cells.
func (t *Table) Floats(name string) ([]float64, error) {
	s, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.String {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out, nil
}

// SetColumn replaces the column with the same name or appends a new one.
func (t *Table) SetColumn(s series.Series) error {
	if s.Err != nil {
		return fmt.Errorf("set column %q: %w", s.Name, s.Err)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("set column %q: %w", s.Name, df.Err)
	}
	t.df = df
	return nil
}

// SetFloats stores values as a float64 column; NaN marks missing cells.
func (t *Table) SetFloats(name string, values []float64) error {
	recs := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			recs[i] = naToken
			continue
		}
		recs[i] = FormatFloat(v)
	}
	return t.SetColumn(series.New(recs, series.Float, name))
}

// Fill replaces every missing cell of a column with value and returns how
// many cells were filled. The column type widens when value does not fit:
// an int64 column filled with a fractional number becomes float64, and a
// non-object column filled with text becomes object.
func (t *Table) Fill(name string, value string) (int, error) {
	s, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	n := s.Len()
	recs := make([]string, n)
	filled := 0
	for i := 0; i < n; i++ {
		v, ok := cellText(s, i)
		if !ok {
			v = value
			filled++
		}
		recs[i] = v
	}
	if filled == 0 {
		return 0, nil
	}
	if err := t.SetColumn(series.New(recs, widen(s.Type(), value), name)); err != nil {
		return 0, err
	}
	return filled, nil
}

func widen(tp series.Type, value string) series.Type {
	switch tp {
	case series.String:
		return series.String
	case series.Int:
		if _, err := strconv.Atoi(value); err == nil {
			return series.Int
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return series.Float
		}
		return series.String
	case series.Float:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return series.Float
		}
		return series.String
	case series.Bool:
		if _, err := strconv.ParseBool(value); err == nil {
			return series.Bool
		}
		return series.String
	}
	return series.String
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.Rows() {
		n = t.Rows()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return &Table{Name: t.Name, df: t.df.Subset(idx)}
}

// Records returns the header followed by every row as text; missing cells are "".
func (t *Table) Records() [][]string {
	names := t.df.Names()
	out := make([][]string, 0, t.Rows()+1)
	out = append(out, append([]string(nil), names...))
	cols := make([]series.Series, len(names))
	for j, n := range names {
		cols[j] = t.df.Col(n)
	}
	for i := 0; i < t.Rows(); i++ {
		row := make([]string, len(names))
		for j := range cols {
			row[j], _ = cellText(cols[j], i)
		}
		out = append(out, row)
	}
	return out
}

// cellText formats one element. Floats use the shortest representation
// that parses back to the same value.
func cellText(s series.Series, i int) (string, bool) {
	e := s.Elem(i)
	if e.IsNA() {
		return "", false
	}
	switch s.Type() {
	case series.Float:
		return FormatFloat(e.Float()), true
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return "", false
		}
		return strconv.Itoa(v), true
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(v), true
	default:
		return e.String(), true
	}
}

// FormatFloat renders f without exponent and with no trailing zeros.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
