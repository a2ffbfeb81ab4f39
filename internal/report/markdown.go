package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/analysis/fundamental"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// Section identifies a block of the report.
type Section string

const (
	SectionSummary     Section = "summary"
	SectionStatements  Section = "statements"
	SectionTrend       Section = "trend"
	SectionCommonSize  Section = "common_size"
	SectionGrowth      Section = "growth"
	SectionTTM         Section = "ttm"
	SectionRatios      Section = "ratios"
	SectionDiagnostics Section = "diagnostics"
)

// AllSections returns all report sections in display order.
func AllSections() []Section {
	return []Section{
		SectionSummary,
		SectionStatements,
		SectionTrend,
		SectionCommonSize,
		SectionGrowth,
		SectionTTM,
		SectionRatios,
		SectionDiagnostics,
	}
}

// ParseSection accepts a section name, case-insensitively, with "-" or "_".
func ParseSection(s string) (Section, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, sec := range AllSections() {
		if string(sec) == name {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown report section %q", s)
}

// Markdown renders res as a GitHub-flavoured markdown document.
func Markdown(res *dashboard.Result, cfg ReportConfig) string {
	var sb strings.Builder

	title := cfg.Title
	if title == "" {
		title = res.Ticker + " financial statements"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString(windowLine(res) + "\n\n")

	if res.Empty() {
		sb.WriteString("> No statement data for the selected periods.\n\n")
	}

	for _, sec := range cfg.sections() {
		switch sec {
		case SectionSummary:
			writeSummary(&sb, res.Summary)
		case SectionStatements:
			writeStatements(&sb, res.Merged, cfg.Statements)
		case SectionTrend:
			writeTrend(&sb, res.Trend)
		case SectionCommonSize:
			writeCommonSize(&sb, res.CommonSize)
		case SectionGrowth:
			sb.WriteString("## Quarter-on-quarter growth\n\n")
			writeDerived(&sb, res.Growth, formatChange)
		case SectionTTM:
			sb.WriteString("## Trailing twelve months\n\n")
			writeDerived(&sb, res.TTM, formatAmount)
		case SectionRatios:
			sb.WriteString("## Ratios\n\n")
			writeDerived(&sb, res.Ratios, formatAmount)
		case SectionDiagnostics:
			writeDiagnostics(&sb, res.Warnings())
		}
	}
	return sb.String()
}

// CompareMarkdown renders one summary table per metric across tickers.
func CompareMarkdown(cmp *dashboard.Comparison, cfg ReportConfig) string {
	var sb strings.Builder

	title := cfg.Title
	if title == "" {
		tickers := make([]string, 0, len(cmp.Results))
		for _, r := range cmp.Results {
			tickers = append(tickers, r.Ticker)
		}
		title = "Comparison: " + strings.Join(tickers, ", ")
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	var metrics []string
	if len(cmp.Results) > 0 {
		metrics = cmp.Results[0].Metrics
	}
	for i, m := range metrics {
		fmt.Fprintf(&sb, "## %s\n\n", m)
		rows := make([][]string, 0, len(cmp.Results))
		for _, r := range cmp.Results {
			if i >= len(r.Summary) {
				continue
			}
			s := r.Summary[i]
			latest := missing
			if !s.Latest.IsZero() {
				latest = s.Latest.String()
			}
			cs := r.CommonSize.Value(m, 0)
			rows = append(rows, []string{
				r.Ticker, latest, formatAmount(s.Last), formatChange(s.Change), formatChange(s.CAGR), formatPercent(cs),
			})
		}
		writeTable(&sb, []string{"Ticker", "Latest", "Value", "Change", "CAGR", "% of " + cmp.Results[0].CommonSize.BaseMetric}, rows)
	}

	if len(cmp.Failures) > 0 {
		sb.WriteString("## Not available\n\n")
		for _, f := range cmp.Failures {
			fmt.Fprintf(&sb, "- **%s**: %s\n", f.Ticker, f.Error)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func windowLine(res *dashboard.Result) string {
	periods := res.Merged.Periods()
	generated := utils.FormatDateTimeIST(res.GeneratedAt)
	if len(periods) == 0 {
		return fmt.Sprintf("_Generated %s_", generated)
	}
	return fmt.Sprintf("_%s to %s, %d quarters with data. Generated %s._",
		periodHeader(periods[0]), periodHeader(periods[len(periods)-1]), len(periods), generated)
}

func writeSummary(sb *strings.Builder, summary []fundamental.Summary) {
	sb.WriteString("## Summary\n\n")
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{
			s.Metric, formatAmount(s.First), formatAmount(s.Last), formatChange(s.Change), formatChange(s.CAGR),
		})
	}
	writeTable(sb, []string{"Metric", "First", "Last", "Change", "CAGR"}, rows)
}

func writeStatements(sb *strings.Builder, merged statement.MergedTable, only []statement.StatementType) {
	parts := merged.Split()
	for _, typ := range statement.StatementTypes() {
		if len(only) > 0 && !slices.Contains(only, typ) {
			continue
		}
		sub := parts[typ]
		if sub.Len() == 0 {
			continue
		}
		fmt.Fprintf(sb, "## %s\n\n", statementTitle(typ))
		header := append([]string{"Field"}, periodLabels(sub.Periods())...)
		var rows [][]string
		for _, col := range sub.Columns() {
			row := []string{col}
			for _, v := range sub.Column(col) {
				row = append(row, formatAmount(v))
			}
			rows = append(rows, row)
		}
		writeTable(sb, header, rows)
	}
}

func writeTrend(sb *strings.Builder, d fundamental.DerivedTable) {
	sb.WriteString("## Normalised trend\n\n")
	sb.WriteString("Each metric scaled to [0, 1] over the selected periods.\n\n")
	header := append([]string{"Metric", "Min", "Max"}, periodLabels(d.Periods)...)
	rows := make([][]string, 0, len(d.Metrics))
	for _, m := range d.Metrics {
		lo, hi := missing, missing
		if r, ok := d.Range(m); ok {
			lo, hi = utils.FormatIndian(r.Min, 2), utils.FormatIndian(r.Max, 2)
		}
		row := []string{m, lo, hi}
		for _, v := range d.Series(m) {
			row = append(row, formatScore(v))
		}
		rows = append(rows, row)
	}
	writeTable(sb, header, rows)
}

func writeCommonSize(sb *strings.Builder, d fundamental.DerivedTable) {
	sb.WriteString("## Common size\n\n")
	if d.BasePeriod == nil {
		sb.WriteString("No period to break down.\n\n")
		return
	}
	if d.BaseIsZeroOrMissing {
		fmt.Fprintf(sb, "%s is zero or missing in %s; no breakdown.\n\n", d.BaseMetric, d.BasePeriod)
		return
	}
	fmt.Fprintf(sb, "Share of %s in %s.\n\n", d.BaseMetric, periodHeader(*d.BasePeriod))
	rows := make([][]string, 0, len(d.Metrics))
	for _, m := range d.Metrics {
		rows = append(rows, []string{m, formatPercent(d.Value(m, 0))})
	}
	writeTable(sb, []string{"Metric", "% of " + d.BaseMetric}, rows)
}

func writeDerived(sb *strings.Builder, d fundamental.DerivedTable, format func(*float64) string) {
	header := append([]string{"Metric"}, periodLabels(d.Periods)...)
	rows := make([][]string, 0, len(d.Metrics))
	for _, m := range d.Metrics {
		row := []string{m}
		for _, v := range d.Series(m) {
			row = append(row, format(v))
		}
		rows = append(rows, row)
	}
	writeTable(sb, header, rows)
}

func writeDiagnostics(sb *strings.Builder, warnings []string) {
	sb.WriteString("## Diagnostics\n\n")
	if len(warnings) == 0 {
		sb.WriteString("No issues.\n\n")
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(sb, "- %s\n", escapeCell(w))
	}
	sb.WriteString("\n")
}

func writeTable(sb *strings.Builder, header []string, rows [][]string) {
	if len(rows) == 0 {
		sb.WriteString("_No data._\n\n")
		return
	}
	cells := func(row []string) string {
		esc := make([]string, len(row))
		for i, c := range row {
			esc[i] = escapeCell(c)
		}
		return "| " + strings.Join(esc, " | ") + " |\n"
	}
	sb.WriteString(cells(header))
	sep := make([]string, len(header))
	for i := range sep {
		if i == 0 {
			sep[i] = "---"
		} else {
			sep[i] = "---:"
		}
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, r := range rows {
		sb.WriteString(cells(r))
	}
	sb.WriteString("\n")
}

func statementTitle(typ statement.StatementType) string {
	switch typ {
	case statement.IncomeStatement:
		return "Income statement"
	case statement.BalanceSheet:
		return "Balance sheet"
	case statement.CashFlow:
		return "Cash flow"
	}
	return string(typ)
}
