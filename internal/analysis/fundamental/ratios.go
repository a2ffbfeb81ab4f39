package fundamental

import (
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// KindRatio marks a table of per-period financial ratios.
const KindRatio Kind = "ratio"

// Ratio is a quotient of two merged columns, optionally scaled (100 for a
// percentage).
type Ratio struct {
	Name        string  `mapstructure:"name" yaml:"name" json:"name"`
	Numerator   string  `mapstructure:"numerator" yaml:"numerator" json:"numerator"`
	Denominator string  `mapstructure:"denominator" yaml:"denominator" json:"denominator"`
	Scale       float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// DefaultRatios returns the margin, leverage and return ratios computed when
// none are configured.
func DefaultRatios() []Ratio {
	return []Ratio{
		{Name: "Operating Margin %", Numerator: "Operating Income", Denominator: "Revenue", Scale: 100},
		{Name: "EBITDA Margin %", Numerator: "EBITDA", Denominator: "Revenue", Scale: 100},
		{Name: "Net Margin %", Numerator: "Net Income", Denominator: "Revenue", Scale: 100},
		{Name: "Debt/Equity", Numerator: "BalanceSheet.Total Debt", Denominator: "BalanceSheet.Total Equity", Scale: 1},
		{Name: "Current Ratio", Numerator: "BalanceSheet.Current Assets", Denominator: "BalanceSheet.Current Liabilities", Scale: 1},
		{Name: "ROE %", Numerator: "Net Income", Denominator: "BalanceSheet.Total Equity", Scale: 100},
		{Name: "Asset Turnover", Numerator: "Revenue", Denominator: "BalanceSheet.Total Assets", Scale: 1},
	}
}

// ComputeRatios evaluates each ratio for every row of table. A ratio is nil
// where either operand is missing or the denominator is zero.
func ComputeRatios(table statement.MergedTable, ratios []Ratio) DerivedTable {
	names := make([]string, len(ratios))
	for i, r := range ratios {
		names[i] = r.Name
	}
	d := newDerived(KindRatio, table.Periods(), names)

	for _, r := range ratios {
		scale := r.Scale
		if scale == 0 {
			scale = 1
		}
		num := table.Column(r.Numerator)
		den := table.Column(r.Denominator)
		out := d.Values[r.Name]
		for i := range out {
			if num[i] == nil || den[i] == nil || *den[i] == 0 {
				continue
			}
			out[i] = ptr(*num[i] / *den[i] * scale)
		}
	}
	return d
}
