package fundamental

import (
	"math"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// Normalize rescales each metric column to [0, 1] over the periods of table.
//
// For every column min and max are taken over the non-nil values. A constant
// column (max == min) maps to 0 everywhere. Nil values stay nil and a column
// with no values at all gets no range.
func Normalize(table statement.MergedTable, metrics []string) DerivedTable {
	d := newDerived(KindTrend, table.Periods(), metrics)
	d.Ranges = make(map[string]*ValueRange, len(metrics))

	for _, m := range metrics {
		col := table.Column(m)
		r, ok := columnRange(col)
		if !ok {
			d.Ranges[m] = nil
			continue
		}
		d.Ranges[m] = &r

		out := d.Values[m]
		lo, span, scale := r.Min, r.Max-r.Min, 1.0
		if math.IsInf(span, 0) {
			// max - min overflows; work in units of the larger magnitude
			scale = math.Max(math.Abs(r.Min), math.Abs(r.Max))
			lo, span = r.Min/scale, r.Max/scale-r.Min/scale
		}
		for i, v := range col {
			if v == nil {
				continue
			}
			if r.Degenerate() {
				out[i] = ptr(0)
				continue
			}
			out[i] = ptr(math.Min(1, (*v/scale-lo)/span))
		}
	}
	return d
}

func columnRange(col []*float64) (ValueRange, bool) {
	var r ValueRange
	seen := false
	for _, v := range col {
		if v == nil {
			continue
		}
		if !seen {
			r = ValueRange{Min: *v, Max: *v}
			seen = true
			continue
		}
		r.Min = min(r.Min, *v)
		r.Max = max(r.Max, *v)
	}
	return r, seen
}
