package analysis

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/edakit/internal/table"
)

// Column names of the retail store dataset.
const (
	ColCompetitionOpenSinceMonth = "CompetitionOpenSinceMonth"
	ColCompetitionOpenSinceYear  = "CompetitionOpenSinceYear"
	ColPromo2SinceWeek           = "Promo2SinceWeek"
	ColPromo2SinceYear           = "Promo2SinceYear"
	ColPromoInterval             = "PromoInterval"
)

// NoPromo marks stores that never joined a promo2 interval.
const NoPromo = "No Promo"

// ImputeDomainDefaults applies the fixed policy for the store dataset:
// competition opening month and year take their modal value, promo2 timing
// columns take 0 and the promo interval takes NoPromo. Every column is
// checked before any is modified.
func ImputeDomainDefaults(t *table.Table) (*table.Table, error) {
	if err := requireColumns(t,
		ColCompetitionOpenSinceMonth, ColCompetitionOpenSinceYear,
		ColPromo2SinceWeek, ColPromo2SinceYear, ColPromoInterval,
	); err != nil {
		return t, err
	}
	if _, err := ImputeCompetitionSince(t); err != nil {
		return t, err
	}
	return ImputeNoPromo(t)
}

// ImputeCompetitionSince fills the competition opening month and year with
// their most frequent values.
func ImputeCompetitionSince(t *table.Table) (*table.Table, error) {
	cols := []string{ColCompetitionOpenSinceMonth, ColCompetitionOpenSinceYear}
	if err := requireColumns(t, cols...); err != nil {
		return t, err
	}
	modes := make([]string, len(cols))
	for i, c := range cols {
		m, err := Mode(t, c)
		if err != nil {
			return t, err
		}
		modes[i] = m
	}
	for i, c := range cols {
		if err := fill(t, c, modes[i]); err != nil {
			return t, err
		}
	}
	return t, nil
}

// ImputeNoPromo marks stores without promo2 data: timing columns become 0
// and the interval becomes NoPromo.
func ImputeNoPromo(t *table.Table) (*table.Table, error) {
	if err := requireColumns(t, ColPromo2SinceWeek, ColPromo2SinceYear, ColPromoInterval); err != nil {
		return t, err
	}
	for _, f := range []struct{ col, value string }{
		{ColPromo2SinceWeek, "0"},
		{ColPromo2SinceYear, "0"},
		{ColPromoInterval, NoPromo},
	} {
		if err := fill(t, f.col, f.value); err != nil {
			return t, err
		}
	}
	return t, nil
}

func fill(t *table.Table, col, value string) error {
	n, err := t.Fill(col, value)
	if err != nil {
		return fmt.Errorf("fill %s: %w", col, err)
	}
	slog.Debug("filled column", "column", col, "value", value, "filled", n)
	return nil
}

func requireColumns(t *table.Table, cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%w: %q", table.ErrColumnNotFound, c)
		}
	}
	return nil
}
