package fundamental

import (
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

type commonSizeOptions struct {
	basePeriod *statement.Period
}

// CommonSizeOption customises CommonSize.
type CommonSizeOption func(*commonSizeOptions)

// WithBasePeriod computes the breakdown for p instead of the latest period.
func WithBasePeriod(p statement.Period) CommonSizeOption {
	return func(o *commonSizeOptions) { o.basePeriod = &p }
}

// CommonSize expresses each metric of one period as a percentage of
// baseMetric for that period. The period is the latest row of table unless
// WithBasePeriod says otherwise.
//
// When the period is absent, or the base value is nil or zero, every value
// is nil and BaseIsZeroOrMissing is set. Signs are preserved.
func CommonSize(table statement.MergedTable, metrics []string, baseMetric string, opts ...CommonSizeOption) DerivedTable {
	var o commonSizeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		row   statement.MergedRecord
		found bool
	)
	if o.basePeriod != nil {
		row, found = table.Row(*o.basePeriod)
	} else {
		row, found = table.Latest()
	}

	var periods []statement.Period
	switch {
	case found:
		periods = []statement.Period{row.Period}
	case o.basePeriod != nil:
		periods = []statement.Period{*o.basePeriod}
	default:
		periods = []statement.Period{}
	}

	d := newDerived(KindCommonSize, periods, metrics)
	d.BaseMetric = baseMetric
	if len(periods) > 0 {
		p := periods[0]
		d.BasePeriod = &p
	}

	if !found {
		d.BaseIsZeroOrMissing = true
		return d
	}
	base, _ := row.Value(baseMetric)
	if base == nil || *base == 0 {
		d.BaseIsZeroOrMissing = true
		return d
	}

	for _, m := range metrics {
		if m == baseMetric {
			d.Values[m][0] = ptr(100)
			continue
		}
		v, _ := row.Value(m)
		if v == nil {
			continue
		}
		d.Values[m][0] = ptr(*v / *base * 100)
	}
	return d
}
