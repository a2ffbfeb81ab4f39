package fundamental

import "github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"

const (
	KindTrailing    Kind = "trailing_sum"
	KindRollingMean Kind = "rolling_mean"
)

// TTMWindow is the number of quarters in a trailing-twelve-month figure.
const TTMWindow = 4

// TrailingSum sums each metric over the window quarters ending at each row.
// With window 4 this is the trailing-twelve-month (TTM) figure.
func TrailingSum(table statement.MergedTable, metrics []string, window int) DerivedTable {
	return rolling(KindTrailing, table, metrics, window, false)
}

// RollingMean averages each metric over the window quarters ending at each
// row.
func RollingMean(table statement.MergedTable, metrics []string, window int) DerivedTable {
	return rolling(KindRollingMean, table, metrics, window, true)
}

// rolling is nil at a row unless the window consecutive calendar quarters
// ending there are all rows of table with a value. A skipped quarter breaks
// the window even when the rows on either side are adjacent in the table.
func rolling(kind Kind, table statement.MergedTable, metrics []string, window int, mean bool) DerivedTable {
	periods := table.Periods()
	d := newDerived(kind, periods, metrics)
	if window <= 0 {
		return d
	}

	// start[i] is the first row of the run of consecutive quarters ending at i
	start := make([]int, len(periods))
	for i := 1; i < len(periods); i++ {
		if periods[i-1].Next() == periods[i] {
			start[i] = start[i-1]
		} else {
			start[i] = i
		}
	}

	for _, m := range metrics {
		col := table.Column(m)
		out := d.Values[m]
		for i := window - 1; i < len(col); i++ {
			first := i - window + 1
			if start[i] > first {
				continue
			}
			sum, ok := 0.0, true
			for _, v := range col[first : i+1] {
				if v == nil {
					ok = false
					break
				}
				sum += *v
			}
			if !ok {
				continue
			}
			if mean {
				sum /= float64(window)
			}
			out[i] = ptr(sum)
		}
	}
	return d
}
