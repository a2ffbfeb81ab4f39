package report

import (
	"strconv"
	"strings"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// missing is printed for absent figures.
const missing = "-"

// formatAmount prints a statement figure with Indian digit grouping.
func formatAmount(v *float64) string {
	if v == nil {
		return missing
	}
	return utils.FormatIndian(*v, 2)
}

// formatScore prints a normalised trend value in [0,1].
func formatScore(v *float64) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

// formatPercent prints a percentage without a sign prefix.
func formatPercent(v *float64) string {
	if v == nil {
		return missing
	}
	return utils.FormatIndian(*v, 2) + "%"
}

// formatChange prints a signed percentage change.
func formatChange(v *float64) string {
	if v == nil {
		return missing
	}
	return utils.FormatPct(*v)
}

// periodHeader labels a period with its Indian fiscal quarter,
// e.g. "Dec-15 (Q3 FY16)".
func periodHeader(p statement.Period) string {
	return p.String() + " (" + utils.FiscalQuarterLabel(p.Month().Calendar(), p.Year()) + ")"
}

func periodLabels(ps []statement.Period) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

// escapeCell makes s safe inside a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
