package datasource

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
)

// screenerSections maps statement types to the section ids of a saved
// Screener.in company page, in order of preference.
var screenerSections = map[statement.StatementType][]string{
	statement.IncomeStatement: {"#quarters", "#profit-loss"},
	statement.BalanceSheet:    {"#balance-sheet"},
	statement.CashFlow:        {"#cash-flow"},
}

// screenerLabels renames Screener.in row labels to the field names used by
// JSON documents. Matching is by prefix, first match wins.
var screenerLabels = []struct {
	prefix string
	name   string
}{
	{"Sales", "Revenue"},
	{"Revenue", "Revenue"},
	{"Expenses", "Operating Expense"},
	{"Operating Profit", "Operating Income"},
	{"Financing Profit", "Operating Income"},
	{"OPM", "OPM %"},
	{"Other Income", "Other Income"},
	{"Interest", "Interest"},
	{"Depreciation", "Depreciation"},
	{"Profit before tax", "Profit Before Tax"},
	{"Tax", "Tax %"},
	{"Net Profit", "Net Income"},
	{"EPS", "EPS"},
	{"Equity Capital", "Share Capital"},
	{"Reserves", "Reserves"},
	{"Borrowings", "Total Debt"},
	{"Other Liabilities", "Other Liabilities"},
	{"Total Liabilities", "Total Liabilities"},
	{"Fixed Assets", "Fixed Assets"},
	{"CWIP", "CWIP"},
	{"Investments", "Investments"},
	{"Other Assets", "Other Assets"},
	{"Total Assets", "Total Assets"},
	{"Cash from Operating", "Operating Cash Flow"},
	{"Cash from Investing", "Investing Cash Flow"},
	{"Cash from Financing", "Financing Cash Flow"},
	{"Net Cash Flow", "Net Cash Flow"},
	{"Free Cash Flow", "Free Cash Flow"},
}

// ParseScreenerHTML extracts the statement tables of a saved Screener.in
// company page. Each table column becomes one entry keyed by periodField
// ("Dec 2015" becomes "Dec-15"); cells that are not numbers become nil.
// Sections absent from the page are absent from the result.
func ParseScreenerHTML(r io.Reader, periodField string) (map[statement.StatementType][]map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse screener HTML: %v", ErrDocumentFormat, err)
	}

	out := make(map[statement.StatementType][]map[string]any)
	for _, typ := range statement.StatementTypes() {
		for _, id := range screenerSections[typ] {
			section := doc.Find(id)
			if section.Length() == 0 {
				continue
			}
			out[typ] = parseScreenerTable(section, periodField)
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no statement tables in page", ErrDocumentFormat)
	}
	return out, nil
}

// parseScreenerTable turns one section table into per-period entries.
func parseScreenerTable(section *goquery.Selection, periodField string) []map[string]any {
	var entries []map[string]any

	// Parse header row for period names.
	section.Find("table thead th").Each(func(i int, th *goquery.Selection) {
		if i > 0 { // skip row label column
			entries = append(entries, map[string]any{
				periodField: screenerPeriod(th.Text()),
			})
		}
	})

	// Parse data rows.
	section.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := screenerLabel(row.Find("td:first-child").Text())
		if label == "" {
			return
		}
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 || i-1 >= len(entries) {
				return
			}
			idx := i - 1
			if _, dup := entries[idx][label]; dup {
				return
			}
			if val, ok := parseScreenerNumber(cell.Text()); ok {
				entries[idx][label] = val
			} else {
				entries[idx][label] = nil
			}
		})
	})

	return entries
}

// screenerPeriod converts a column header such as "Dec 2015" to "Dec-15".
// Headers in any other shape are returned trimmed, unchanged.
func screenerPeriod(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || len(fields[1]) != 4 {
		return strings.TrimSpace(header)
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return strings.TrimSpace(header)
	}
	return fields[0] + "-" + fields[1][2:]
}

// screenerLabel cleans a row label (the page appends "+" to expandable
// rows) and maps it to its field name.
func screenerLabel(raw string) string {
	label := strings.Join(strings.Fields(strings.ReplaceAll(raw, "\u00a0", " ")), " ")
	label = strings.TrimSpace(strings.TrimSuffix(label, "+"))
	if label == "" {
		return ""
	}
	for _, l := range screenerLabels {
		if strings.HasPrefix(label, l.prefix) {
			return l.name
		}
	}
	return label
}

// parseScreenerNumber parses a number from Screener.in format.
// Handles commas, percentages, and Cr/Lakh suffixes.
func parseScreenerNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	if strings.HasSuffix(s, "Cr") || strings.HasSuffix(s, "Cr.") {
		s = strings.TrimSuffix(s, "Cr.")
		s = strings.TrimSuffix(s, "Cr")
		s = strings.TrimSpace(s)
		multiplier = 1e7 // 1 Crore = 10 million
	} else if strings.HasSuffix(s, "L") || strings.HasSuffix(s, "Lakh") {
		s = strings.TrimSuffix(s, "Lakh")
		s = strings.TrimSuffix(s, "L")
		s = strings.TrimSpace(s)
		multiplier = 1e5
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val * multiplier, true
}
