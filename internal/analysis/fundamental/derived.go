// Package fundamental derives analysis views from a merged statement table:
// min-max normalised trends, common-size percentages and period-over-period
// growth. All functions are pure; they never return NaN or Inf.
package fundamental

import (
	"math"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// Kind identifies the transform that produced a DerivedTable.
type Kind string

const (
	KindTrend      Kind = "trend"
	KindCommonSize Kind = "common_size"
	KindGrowth     Kind = "growth"
)

// ValueRange is the observed [Min, Max] of a column before normalisation.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the range collapses to a single value.
func (r ValueRange) Degenerate() bool { return r.Max == r.Min }

// DerivedTable holds one derived series per metric, aligned with Periods.
type DerivedTable struct {
	Kind    Kind                   `json:"kind"`
	Periods []statement.Period     `json:"periods"`
	Metrics []string               `json:"metrics"`
	Values  map[string][]*float64  `json:"values"`
	Ranges  map[string]*ValueRange `json:"valueRanges,omitempty"`

	BasePeriod          *statement.Period `json:"basePeriod,omitempty"`
	BaseMetric          string            `json:"baseMetric,omitempty"`
	BaseIsZeroOrMissing bool              `json:"baseIsZeroOrMissing,omitempty"`
}

func newDerived(kind Kind, periods []statement.Period, metrics []string) DerivedTable {
	d := DerivedTable{
		Kind:    kind,
		Periods: periods,
		Metrics: append([]string(nil), metrics...),
		Values:  make(map[string][]*float64, len(metrics)),
	}
	for _, m := range metrics {
		d.Values[m] = make([]*float64, len(periods))
	}
	return d
}

// Series returns the derived values of one metric.
func (d DerivedTable) Series(metric string) []*float64 { return d.Values[metric] }

// Value returns the derived value of metric at row i, or nil.
func (d DerivedTable) Value(metric string, i int) *float64 {
	s := d.Values[metric]
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Range returns the value range recorded for metric, if any.
func (d DerivedTable) Range(metric string) (ValueRange, bool) {
	r, ok := d.Ranges[metric]
	if !ok || r == nil {
		return ValueRange{}, false
	}
	return *r, true
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
