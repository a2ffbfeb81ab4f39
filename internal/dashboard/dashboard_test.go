package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
)

const tcsDoc = `{
  "IncomeStatement": [
    {"Date": "Dec-15", "Revenue": 100, "Net Income": 10},
    {"Date": "Mar-16", "Revenue": 150, "Net Income": 30},
    {"Date": "Jun-16", "Revenue": 200, "Net Income": 50},
    {"Date": "2016-09-30", "Revenue": 999}
  ],
  "BalanceSheet": [
    {"Date": "Jun-16", "Total Debt": 40, "Total Equity": 400}
  ],
  "CashFlow": []
}`

const infyDoc = `{
  "IncomeStatement": [
    {"Date": "Mar-16", "Revenue": 80, "Net Income": 20}
  ]
}`

// newTestService serves documents from a temp dir with the calendar
// Dec-15..Sep-16.
func newTestService(t *testing.T) *Service {
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
	cfg.Analysis.MaxCompareTickers = 3

	svc, err := New(cfg, datasource.NewFileSource(cfg.Data))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func f(v float64) *float64 { return &v }

var floatPtrCmp = cmp.Comparer(func(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	d := *a - *b
	return d < 1e-9 && d > -1e-9
})

func labels(ps []statement.Period) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func TestRunRange(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Run(context.Background(), models.AnalyzeRequest{Ticker: "tcs", From: "Dec-15", To: "Sep-16"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" || res.Ticker != "TCS" {
		t.Errorf("identity: %q %q", res.RunID, res.Ticker)
	}
	if got := strings.Join(labels(res.Merged.Periods()), ","); got != "Dec-15,Mar-16,Jun-16" {
		t.Errorf("merged periods: got %s", got)
	}
	if got := strings.Join(labels(res.Selection.RequestedButMissing), ","); got != "Sep-16" {
		t.Errorf("RequestedButMissing: got %s", got)
	}
	if got := strings.Join(labels(res.Merged.Unavailable), ","); got != "Sep-16" {
		t.Errorf("Unavailable: got %s", got)
	}
	if len(res.SkippedRecords) != 1 || res.SkippedRecords[0].RawValue != "2016-09-30" {
		t.Errorf("SkippedRecords: got %+v", res.SkippedRecords)
	}
	if len(res.MissingSections) != 0 {
		t.Errorf("an empty section is not missing: %v", res.MissingSections)
	}

	if diff := cmp.Diff([]*float64{f(0), f(0.5), f(1)}, res.Trend.Series("Revenue"), floatPtrCmp); diff != "" {
		t.Errorf("trend Revenue mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{f(100)}, res.CommonSize.Series("Revenue"), floatPtrCmp); diff != "" {
		t.Errorf("common-size Revenue mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{f(25)}, res.CommonSize.Series("Net Income"), floatPtrCmp); diff != "" {
		t.Errorf("common-size Net Income mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{nil, f(50), f(100.0 / 3)}, res.Growth.Series("Revenue"), floatPtrCmp); diff != "" {
		t.Errorf("growth Revenue mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{nil, nil, nil}, res.TTM.Series("Revenue"), floatPtrCmp); diff != "" {
		t.Errorf("TTM needs four quarters (-want +got):\n%s", diff)
	}
	if v := res.Ratios.Value("Debt/Equity", 2); v == nil || *v != 0.1 {
		t.Errorf("Debt/Equity at Jun-16: got %v", v)
	}
	if len(res.Summary) != 2 || res.Summary[0].Metric != "Revenue" {
		t.Errorf("Summary: got %+v", res.Summary)
	}

	warnings := strings.Join(res.Warnings(), "\n")
	for _, want := range []string{"2016-09-30", "Sep-16 requested but not available"} {
		if !strings.Contains(warnings, want) {
			t.Errorf("warnings missing %q:\n%s", want, warnings)
		}
	}
}

func TestRunSelectionModes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		req         models.AnalyzeRequest
		wantPeriods string
		wantMissing string
		wantInvalid int
	}{
		{"whole calendar", models.AnalyzeRequest{Ticker: "TCS"}, "Dec-15,Mar-16,Jun-16", "Sep-16", 0},
		{"open start", models.AnalyzeRequest{Ticker: "TCS", To: "Mar-16"}, "Dec-15,Mar-16", "", 0},
		{"open end", models.AnalyzeRequest{Ticker: "TCS", From: "Jun-16"}, "Jun-16", "Sep-16", 0},
		{"explicit", models.AnalyzeRequest{Ticker: "TCS", Periods: []string{"Jun-16", "Dec-15", "bogus", "Dec-17"}}, "Dec-15,Jun-16", "Dec-17", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Run(ctx, tt.req)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := strings.Join(labels(res.Merged.Periods()), ","); got != tt.wantPeriods {
				t.Errorf("periods: got %s, want %s", got, tt.wantPeriods)
			}
			if got := strings.Join(labels(res.Selection.RequestedButMissing), ","); got != tt.wantMissing {
				t.Errorf("missing: got %s, want %s", got, tt.wantMissing)
			}
			if len(res.Selection.Invalid) != tt.wantInvalid {
				t.Errorf("invalid: got %+v", res.Selection.Invalid)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Run(ctx, models.AnalyzeRequest{Ticker: "TCS", From: "Jun-16", To: "Dec-15"}); !errors.Is(err, statement.ErrInvalidRange) {
		t.Errorf("inverted range: expected ErrInvalidRange, got %v", err)
	}
	if _, err := svc.Run(ctx, models.AnalyzeRequest{Ticker: "TCS", From: "Q1-16", To: "Dec-15"}); !errors.Is(err, statement.ErrInvalidPeriodFormat) {
		t.Errorf("bad bound: expected ErrInvalidPeriodFormat, got %v", err)
	}
	if _, err := svc.Run(ctx, models.AnalyzeRequest{Ticker: "TCS", BasePeriod: "June"}); !errors.Is(err, statement.ErrInvalidPeriodFormat) {
		t.Errorf("bad base period: expected ErrInvalidPeriodFormat, got %v", err)
	}
	if _, err := svc.Run(ctx, models.AnalyzeRequest{Ticker: "WIPRO"}); !errors.Is(err, datasource.ErrTickerNotFound) {
		t.Errorf("unknown ticker: expected ErrTickerNotFound, got %v", err)
	}
}

func TestRunBasePeriodAndMetric(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Run(context.Background(), models.AnalyzeRequest{
		Ticker:     "TCS",
		Metrics:    []string{"Net Income"},
		BaseMetric: "Net Income",
		BasePeriod: "Mar-16",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"Net Income"}, res.Metrics); diff != "" {
		t.Errorf("Metrics: %s", diff)
	}
	if res.CommonSize.BasePeriod == nil || res.CommonSize.BasePeriod.String() != "Mar-16" {
		t.Errorf("BasePeriod: got %v", res.CommonSize.BasePeriod)
	}
	if v := res.CommonSize.Value("Net Income", 0); v == nil || *v != 100 {
		t.Errorf("base metric at base period should be 100, got %v", v)
	}

	res, err = svc.Run(context.Background(), models.AnalyzeRequest{Ticker: "TCS", BasePeriod: "Sep-16"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.CommonSize.BaseIsZeroOrMissing {
		t.Error("base period without data should flag BaseIsZeroOrMissing")
	}
	if !strings.Contains(strings.Join(res.Warnings(), "\n"), "zero or missing") {
		t.Errorf("warnings: %v", res.Warnings())
	}
}

func TestCompare(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	out, err := svc.Compare(ctx, models.CompareRequest{Tickers: []string{"TCS", "INFY", "WIPRO"}, From: "Dec-15", To: "Jun-16"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(out.Results) != 2 || out.Results[0].Ticker != "TCS" || out.Results[1].Ticker != "INFY" {
		t.Fatalf("Results: got %d", len(out.Results))
	}
	if got := strings.Join(labels(out.Results[1].Merged.Periods()), ","); got != "Mar-16" {
		t.Errorf("INFY periods: got %s", got)
	}
	if len(out.Failures) != 1 || out.Failures[0].Ticker != "WIPRO" || !errors.Is(out.Failures[0].Unwrap(), datasource.ErrTickerNotFound) {
		t.Errorf("Failures: got %+v", out.Failures)
	}

	if _, err := svc.Compare(ctx, models.CompareRequest{Tickers: []string{"A", "B", "C", "D"}}); !errors.Is(err, ErrTooManyTickers) {
		t.Errorf("expected ErrTooManyTickers, got %v", err)
	}
	if _, err := svc.Compare(ctx, models.CompareRequest{Tickers: []string{"TCS"}, From: "Jun-16", To: "Mar-16"}); !errors.Is(err, statement.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestNewRejectsBadCalendar(t *testing.T) {
	cfg := config.Default()
	cfg.Calendar.SupportedPeriods = []string{"Dec-15", "Q2"}
	if _, err := New(cfg, nil); !errors.Is(err, statement.ErrInvalidPeriodFormat) {
		t.Fatalf("expected ErrInvalidPeriodFormat, got %v", err)
	}
}
