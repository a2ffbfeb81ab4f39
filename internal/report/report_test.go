package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
)

const tcsDoc = `{
  "IncomeStatement": [
    {"Date": "Dec-15", "Revenue": 100, "Net Income": 10},
    {"Date": "Mar-16", "Revenue": 150, "Net Income": 30},
    {"Date": "Jun-16", "Revenue": 200, "Net Income": 50}
  ],
  "BalanceSheet": [
    {"Date": "Jun-16", "Total Debt": 40, "Total Equity": 400}
  ]
}`

const infyDoc = `{
  "IncomeStatement": [
    {"Date": "Mar-16", "Revenue": 80, "Net Income": 20}
  ]
}`

func newService(t *testing.T) *dashboard.Service {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"TCS.json": tcsDoc, "INFY.json": infyDoc} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Data.Dir = dir
	cfg.Calendar.SupportedPeriods = []string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}
	cfg.Analysis.Metrics = []string{"Revenue", "Net Income"}
	cfg.Analysis.BaseMetric = "Revenue"
	svc, err := dashboard.New(cfg, datasource.NewFileSource(cfg.Data))
	if err != nil {
		t.Fatalf("dashboard.New: %v", err)
	}
	return svc
}

func analyze(t *testing.T, req models.AnalyzeRequest) *dashboard.Result {
	t.Helper()
	res, err := newService(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func f(v float64) *float64 { return &v }

var pathRe = regexp.MustCompile(`<path d="([^"]+)"`)

func TestLineChartBreaksAtGaps(t *testing.T) {
	svg := LineChart([]LineChartSeries{{Name: "Revenue", Values: []*float64{f(1), nil, f(3), f(4)}}},
		[]string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}, DefaultChartConfig())

	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("circles = %d, want 3", got)
	}
	m := pathRe.FindStringSubmatch(svg)
	if m == nil {
		t.Fatalf("no path in chart:\n%s", svg)
	}
	moves := 0
	for _, part := range strings.Fields(m[1]) {
		if strings.HasPrefix(part, "M") {
			moves++
		}
	}
	if moves != 2 {
		t.Errorf("path %q has %d segments, want 2", m[1], moves)
	}
	if !strings.Contains(svg, "Sep-16") {
		t.Error("x-axis labels missing")
	}
}

func TestLineChartEmpty(t *testing.T) {
	tests := []struct {
		name   string
		series []LineChartSeries
		want   string
	}{
		{"no series", nil, "No data"},
		{"all gaps", []LineChartSeries{{Name: "x", Values: []*float64{nil, nil}}}, "No data points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := LineChart(tt.series, nil, DefaultChartConfig())
			if !strings.Contains(svg, tt.want) {
				t.Errorf("chart = %s, want %q", svg, tt.want)
			}
		})
	}
}

func TestCommonSizeChartZeroBase(t *testing.T) {
	res := analyze(t, models.AnalyzeRequest{Ticker: "TCS", BaseMetric: "Missing Metric"})
	svg := CommonSizeChart(res.CommonSize, DefaultChartConfig())
	if !strings.Contains(svg, "Missing Metric is zero or missing") {
		t.Errorf("chart = %s", svg)
	}
	if strings.Contains(svg, "<rect x=") {
		t.Error("bars drawn for a missing base")
	}
}

func TestMarkdownSections(t *testing.T) {
	res := analyze(t, models.AnalyzeRequest{Ticker: "TCS"})

	md := Markdown(res, DefaultReportConfig())
	for _, want := range []string{
		"# TCS financial statements",
		"Dec-15 (Q3 FY16) to Jun-16 (Q1 FY17)",
		"## Summary",
		"## Income statement",
		"## Balance sheet",
		"## Normalised trend",
		"| Revenue | 100.00 | 200.00 | 0.000 | 0.500 | 1.000 |",
		"## Common size",
		"| Net Income | 25.00% |",
		"## Quarter-on-quarter growth",
		"+50.00%",
		"## Trailing twelve months",
		"## Ratios",
		"## Diagnostics",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Cash flow") {
		t.Error("empty cash flow section rendered")
	}

	cfg := DefaultReportConfig()
	cfg.Sections = []Section{SectionTrend}
	cfg.Title = "Custom"
	md = Markdown(res, cfg)
	if !strings.HasPrefix(md, "# Custom\n") {
		t.Errorf("title not applied:\n%s", md)
	}
	if strings.Contains(md, "## Summary") || !strings.Contains(md, "## Normalised trend") {
		t.Errorf("section filter not applied:\n%s", md)
	}
}

func TestMarkdownEmptyWindow(t *testing.T) {
	res := analyze(t, models.AnalyzeRequest{Ticker: "TCS", Periods: []string{"Sep-16"}})
	md := Markdown(res, DefaultReportConfig())
	for _, want := range []string{
		"No statement data for the selected periods.",
		"period Sep-16 requested but not available",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestCompareMarkdown(t *testing.T) {
	cmp, err := newService(t).Compare(context.Background(), models.CompareRequest{
		Tickers: []string{"TCS", "INFY", "WIPRO"},
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	md := CompareMarkdown(cmp, DefaultReportConfig())
	for _, want := range []string{
		"# Comparison: TCS, INFY",
		"## Revenue",
		"## Net Income",
		"| INFY | Mar-16 | 80.00 |",
		"## Not available",
		"**WIPRO**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestGenerateHTML(t *testing.T) {
	res := analyze(t, models.AnalyzeRequest{Ticker: "TCS"})
	out, err := GenerateHTML(res, DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "<table>", "<svg", "TCS financial statements", res.RunID} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if _, err := GenerateHTML(nil, DefaultReportConfig()); err == nil {
		t.Error("nil result accepted")
	}
}

func TestGenerateCompareHTML(t *testing.T) {
	cmp, err := newService(t).Compare(context.Background(), models.CompareRequest{Tickers: []string{"TCS", "INFY"}})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	out, err := GenerateCompareHTML(cmp, DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateCompareHTML: %v", err)
	}
	if !strings.Contains(out, "Revenue (normalised)") || !strings.Contains(out, "<svg") {
		t.Error("comparison chart missing")
	}
}

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("| a | b |\n| --- | ---: |\n| x \\| y | 1 |\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "x | y") {
		t.Errorf("MarkdownToHTML = %s", out)
	}
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{"summary", SectionSummary, false},
		{"Common-Size", SectionCommonSize, false},
		{" ratios ", SectionRatios, false},
		{"valuation", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSection(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPeriodHeader(t *testing.T) {
	tests := map[string]string{
		"Dec-15": "Dec-15 (Q3 FY16)",
		"Mar-16": "Mar-16 (Q4 FY16)",
		"Jun-16": "Jun-16 (Q1 FY17)",
	}
	for in, want := range tests {
		if got := periodHeader(statement.MustParsePeriod(in)); got != want {
			t.Errorf("periodHeader(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	dir := t.TempDir()

	md := filepath.Join(dir, "out", "tcs.md")
	got, err := WriteReport(context.Background(), "# TCS", md, DefaultPDFConfig())
	if err != nil || got != md {
		t.Fatalf("WriteReport(md) = %q, %v", got, err)
	}
	if b, _ := os.ReadFile(md); string(b) != "# TCS" {
		t.Errorf("content = %q", b)
	}

	got, err = WriteReport(context.Background(), "<html></html>", filepath.Join(dir, "tcs.pdf"), DefaultPDFConfig())
	if err != nil {
		t.Fatalf("WriteReport(pdf): %v", err)
	}
	if want := filepath.Join(dir, "tcs.html"); got != want {
		t.Errorf("fallback path = %q, want %q", got, want)
	}

	if _, err := WriteReport(context.Background(), "x", "", DefaultPDFConfig()); err == nil {
		t.Error("empty path accepted")
	}
}

func TestDetectPDFEngine(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		if name == "chromium" {
			return "/usr/bin/chromium", nil
		}
		return "", errors.New("not found")
	}
	if got := DetectPDFEngine(); got != EngineChromium {
		t.Errorf("DetectPDFEngine = %q, want chromium", got)
	}

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if got := DetectPDFEngine(); got != EngineNone {
		t.Errorf("DetectPDFEngine = %q, want none", got)
	}
}
