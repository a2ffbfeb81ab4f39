package report

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report generator: markdown body, goldmark HTML, SVG charts
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
	FormatPDF      ReportFormat = "pdf"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format     ReportFormat              // output format (default: HTML)
	Sections   []Section                 // sections to include (default: all)
	Statements []statement.StatementType // statements section filter (default: all three)
	Title      string                    // custom report title (optional)
	Author     string                    // author line (optional)
	ChartCfg   ChartConfig               // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatHTML,
		Sections: AllSections(),
		Author:   "PredictRAM Financial Analysis",
		ChartCfg: DefaultChartConfig(),
	}
}

// hasSection returns true if the section is included in the config.
func (rc ReportConfig) hasSection(s Section) bool {
	return slices.Contains(rc.sections(), s)
}

func (rc ReportConfig) sections() []Section {
	if len(rc.Sections) == 0 {
		return AllSections()
	}
	return rc.Sections
}

// ReportData is the template model passed to ReportTemplate.
type ReportData struct {
	Title        string
	Tickers      []string
	Window       string
	Author       string
	GeneratedAt  string // IST formatted
	RunID        string
	WarningCount int
	Charts       []template.HTML
	Body         template.HTML
}

// GenerateHTML generates an HTML report for one analysis result.
func GenerateHTML(res *dashboard.Result, cfg ReportConfig) (string, error) {
	if res == nil {
		return "", fmt.Errorf("result is nil")
	}

	body, err := MarkdownToHTML(Markdown(res, cfg))
	if err != nil {
		return "", err
	}

	data := ReportData{
		Title:        res.Ticker + " financial statements",
		Tickers:      []string{res.Ticker},
		Window:       windowText(res),
		Author:       cfg.Author,
		GeneratedAt:  ReportTimestamp(),
		RunID:        res.RunID,
		WarningCount: len(res.Warnings()),
		Body:         template.HTML(body),
	}
	if cfg.Title != "" {
		data.Title = cfg.Title
	}
	if !res.Empty() {
		chartCfg := cfg.ChartCfg
		if cfg.hasSection(SectionTrend) {
			data.Charts = append(data.Charts, template.HTML(TrendChart(res.Trend, chartCfg)))
		}
		if cfg.hasSection(SectionCommonSize) {
			data.Charts = append(data.Charts, template.HTML(CommonSizeChart(res.CommonSize, chartCfg)))
		}
	}
	return render(data)
}

// GenerateCompareHTML generates an HTML report for a comparison.
func GenerateCompareHTML(cmp *dashboard.Comparison, cfg ReportConfig) (string, error) {
	if cmp == nil {
		return "", fmt.Errorf("comparison is nil")
	}

	body, err := MarkdownToHTML(CompareMarkdown(cmp, cfg))
	if err != nil {
		return "", err
	}

	data := ReportData{
		Title:       cfg.Title,
		Author:      cfg.Author,
		GeneratedAt: ReportTimestamp(),
		RunID:       cmp.RunID,
		Body:        template.HTML(body),
	}
	if data.Title == "" {
		data.Title = "Comparison"
	}
	for _, r := range cmp.Results {
		data.Tickers = append(data.Tickers, r.Ticker)
	}

	// one line per ticker for the first metric
	if len(cmp.Results) > 0 && len(cmp.Results[0].Metrics) > 0 {
		metric := cmp.Results[0].Metrics[0]
		series := make([]LineChartSeries, 0, len(cmp.Results))
		var labels []string
		for _, r := range cmp.Results {
			series = append(series, LineChartSeries{Name: r.Ticker, Values: r.Trend.Series(metric)})
			if len(r.Trend.Periods) > len(labels) {
				labels = periodLabels(r.Trend.Periods)
			}
		}
		chartCfg := cfg.ChartCfg
		chartCfg.Title = metric + " (normalised)"
		data.Charts = append(data.Charts, template.HTML(LineChart(series, labels, chartCfg)))
	}
	return render(data)
}

// MarkdownToHTML converts GitHub-flavoured markdown to an HTML fragment.
func MarkdownToHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

func render(data ReportData) (string, error) {
	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

func windowText(res *dashboard.Result) string {
	periods := res.Merged.Periods()
	if len(periods) == 0 {
		return ""
	}
	return fmt.Sprintf("%s to %s · %d quarters", periodHeader(periods[0]), periodHeader(periods[len(periods)-1]), len(periods))
}

// ReportTimestamp returns current IST time formatted for report headers.
func ReportTimestamp() string {
	return utils.NowIST().Format("02 Jan 2006, 03:04 PM IST")
}
