package fundamental

import (
	"math"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// Growth computes the period-over-period percentage change of each metric.
// The first row, and any row whose previous value is nil or zero, is nil.
// Rows are consecutive rows of table, not consecutive calendar quarters.
func Growth(table statement.MergedTable, metrics []string) DerivedTable {
	d := newDerived(KindGrowth, table.Periods(), metrics)
	for _, m := range metrics {
		col := table.Column(m)
		out := d.Values[m]
		for i := 1; i < len(col); i++ {
			out[i] = pctChange(col[i-1], col[i])
		}
	}
	return d
}

// Summary is a per-metric recap of the selected range.
type Summary struct {
	Metric string           `json:"metric"`
	First  *float64         `json:"first"`
	Last   *float64         `json:"last"`
	Change *float64         `json:"changePct"`
	CAGR   *float64         `json:"cagrPct"`
	Latest statement.Period `json:"latestPeriod"`
}

// Summarize returns the first and last non-nil value of each metric with the
// overall change and compound quarterly growth rate annualised.
func Summarize(table statement.MergedTable, metrics []string) []Summary {
	out := make([]Summary, 0, len(metrics))
	periods := table.Periods()
	for _, m := range metrics {
		s := Summary{Metric: m}
		col := table.Column(m)
		first, last := -1, -1
		for i, v := range col {
			if v == nil {
				continue
			}
			if first < 0 {
				first = i
			}
			last = i
		}
		if first >= 0 {
			s.First, s.Last = col[first], col[last]
			s.Latest = periods[last]
			s.Change = pctChange(s.First, s.Last)
			quarters := quartersBetween(periods[first], periods[last])
			s.CAGR = cagr(*s.First, *s.Last, float64(quarters)/4)
		}
		out = append(out, s)
	}
	return out
}

func quartersBetween(a, b statement.Period) int {
	return (b.Year()-a.Year())*4 + b.Quarter() - a.Quarter()
}

// --- helpers ---

func pctChange(old, cur *float64) *float64 {
	if old == nil || cur == nil || *old == 0 {
		return nil
	}
	return ptr((*cur - *old) / math.Abs(*old) * 100)
}

func cagr(start, end, years float64) *float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return nil
	}
	return ptr((math.Pow(end/start, 1/years) - 1) * 100)
}
