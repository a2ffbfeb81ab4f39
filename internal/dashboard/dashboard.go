// Package dashboard runs the analysis pipeline for one or more tickers:
// load the document, build the statement store, select periods, merge the
// three statements and derive the trend, common-size, growth and ratio
// views. Every soft failure along the way is returned in the Result.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/analysis/fundamental"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// ErrTooManyTickers is returned when a comparison exceeds the configured
// ticker limit.
var ErrTooManyTickers = errors.New("too many tickers")

// Result is the analysis of one ticker over the selected periods.
type Result struct {
	RunID       string    `json:"runId"`
	Ticker      string    `json:"ticker"`
	GeneratedAt time.Time `json:"generatedAt"`

	Source          models.DocumentFormat `json:"source"`
	MissingSections []string              `json:"missingSections,omitempty"`
	DroppedEntries  int                   `json:"droppedEntries,omitempty"`
	Repaired        bool                  `json:"repaired,omitempty"`

	Selection      statement.Selection       `json:"selection"`
	SkippedRecords []statement.SkippedRecord `json:"skippedRecords"`
	Merged         statement.MergedTable     `json:"merged"`

	Metrics    []string                 `json:"metrics"`
	Trend      fundamental.DerivedTable `json:"trend"`
	CommonSize fundamental.DerivedTable `json:"commonSize"`
	Growth     fundamental.DerivedTable `json:"growth"`
	TTM        fundamental.DerivedTable `json:"ttm"`
	Ratios     fundamental.DerivedTable `json:"ratios"`
	Summary    []fundamental.Summary    `json:"summary"`
}

// Empty reports whether no period had data.
func (r *Result) Empty() bool { return r.Merged.Len() == 0 }

// Warnings returns the soft failures of the run as human-readable lines.
func (r *Result) Warnings() []string {
	var out []string
	for _, s := range r.MissingSections {
		out = append(out, fmt.Sprintf("section %s not found in document", s))
	}
	if r.DroppedEntries > 0 {
		out = append(out, fmt.Sprintf("%d section entries were not objects and were ignored", r.DroppedEntries))
	}
	for _, s := range r.SkippedRecords {
		out = append(out, fmt.Sprintf("%s record %d skipped (%q): %s", s.Source, s.Index, s.RawValue, s.Reason))
	}
	for _, l := range r.Selection.Invalid {
		out = append(out, fmt.Sprintf("invalid period %q: %s", l.Label, l.Reason))
	}
	for _, p := range r.Selection.RequestedButMissing {
		out = append(out, fmt.Sprintf("period %s requested but not available", p))
	}
	if r.CommonSize.BaseIsZeroOrMissing {
		out = append(out, fmt.Sprintf("common-size base %q is zero or missing", r.CommonSize.BaseMetric))
	}
	return out
}

// Service wires a statement source to the configured calendar and
// analysis settings.
type Service struct {
	cfg      *config.Config
	source   datasource.Source
	agg      *datasource.Aggregator
	calendar statement.Calendar
}

// New creates a service. The master calendar is parsed once here.
func New(cfg *config.Config, source datasource.Source) (*Service, error) {
	cal, err := cfg.MasterCalendar()
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		agg:      datasource.NewAggregator(source, cfg.Analysis.ConcurrentLoads),
		calendar: cal,
	}, nil
}

// Calendar returns the master calendar.
func (s *Service) Calendar() statement.Calendar { return s.calendar }

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Source returns the statement source.
func (s *Service) Source() datasource.Source { return s.source }

// Store loads ticker and builds its statement store.
func (s *Service) Store(ctx context.Context, ticker string) (*statement.Store, *models.StatementDocument, error) {
	doc, err := s.source.Load(ctx, ticker)
	if err != nil {
		return nil, nil, err
	}
	return s.build(doc), doc, nil
}

// Run loads req.Ticker and analyses it.
func (s *Service) Run(ctx context.Context, req models.AnalyzeRequest) (*Result, error) {
	doc, err := s.source.Load(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}
	return s.Analyze(doc, req)
}

// Analyze runs the pipeline on an already loaded document. Only an
// inverted range or a malformed bound or base period is an error.
func (s *Service) Analyze(doc *models.StatementDocument, req models.AnalyzeRequest) (*Result, error) {
	store := s.build(doc)

	sel, err := s.selectPeriods(store, req)
	if err != nil {
		return nil, err
	}

	var csOpts []fundamental.CommonSizeOption
	if req.BasePeriod != "" {
		p, err := statement.ParsePeriod(req.BasePeriod)
		if err != nil {
			return nil, fmt.Errorf("base period: %w", err)
		}
		csOpts = append(csOpts, fundamental.WithBasePeriod(p))
	}

	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = s.cfg.Analysis.Metrics
	}
	baseMetric := req.BaseMetric
	if baseMetric == "" {
		baseMetric = s.cfg.Analysis.BaseMetric
	}

	merged := statement.Merge(store, sel.Periods)

	res := &Result{
		RunID:           uuid.NewString(),
		Ticker:          doc.Ticker,
		GeneratedAt:     utils.NowIST(),
		Source:          doc.Format,
		MissingSections: doc.MissingSections,
		DroppedEntries:  doc.DroppedEntries,
		Repaired:        doc.Repaired,
		Selection:       sel,
		SkippedRecords:  store.Skipped(),
		Merged:          merged,
		Metrics:         metrics,
		Trend:           fundamental.Normalize(merged, metrics),
		CommonSize:      fundamental.CommonSize(merged, metrics, baseMetric, csOpts...),
		Growth:          fundamental.Growth(merged, metrics),
		TTM:             fundamental.TrailingSum(merged, metrics, fundamental.TTMWindow),
		Ratios:          fundamental.ComputeRatios(merged, s.cfg.Analysis.Ratios),
		Summary:         fundamental.Summarize(merged, metrics),
	}

	ev := log.Info()
	if len(res.SkippedRecords) > 0 || len(sel.RequestedButMissing) > 0 || len(sel.Invalid) > 0 {
		ev = log.Warn()
	}
	ev.Str("run_id", res.RunID).Str("ticker", res.Ticker).
		Int("periods", merged.Len()).
		Int("skipped", len(res.SkippedRecords)).
		Int("requested_missing", len(sel.RequestedButMissing)).
		Int("invalid_labels", len(sel.Invalid)).
		Bool("base_zero_or_missing", res.CommonSize.BaseIsZeroOrMissing).
		Msg("analysis complete")

	return res, nil
}

// TickerFailure is a ticker that could not be analysed in a comparison.
type TickerFailure struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
	err    error
}

// Unwrap returns the underlying error.
func (f TickerFailure) Unwrap() error { return f.err }

// Comparison is the same analysis run over several tickers.
type Comparison struct {
	RunID    string          `json:"runId"`
	Results  []*Result       `json:"results"`
	Failures []TickerFailure `json:"failures,omitempty"`
}

// Compare loads every ticker concurrently and analyses each with the same
// window. A ticker that fails to load or analyse is reported in Failures.
func (s *Service) Compare(ctx context.Context, req models.CompareRequest) (*Comparison, error) {
	if limit := s.cfg.Analysis.MaxCompareTickers; limit > 0 && len(req.Tickers) > limit {
		return nil, fmt.Errorf("%w: %d requested, limit is %d", ErrTooManyTickers, len(req.Tickers), limit)
	}

	loads, err := s.agg.LoadMany(ctx, req.Tickers)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	out := &Comparison{RunID: uuid.NewString()}
	for _, l := range loads {
		if l.Err != nil {
			out.Failures = append(out.Failures, TickerFailure{Ticker: l.Ticker, Error: l.Err.Error(), err: l.Err})
			continue
		}
		res, err := s.Analyze(l.Document, req.ForTicker(l.Ticker))
		if err != nil {
			// the window is shared, so a bad range fails every ticker alike
			return nil, err
		}
		out.Results = append(out.Results, res)
	}
	log.Info().Str("run_id", out.RunID).Int("tickers", len(loads)).
		Int("failed", len(out.Failures)).Msg("comparison complete")
	return out, nil
}

func (s *Service) build(doc *models.StatementDocument) *statement.Store {
	return statement.Build(doc.IncomeStatement, doc.BalanceSheet, doc.CashFlow,
		statement.WithTicker(doc.Ticker),
		statement.WithPeriodFields(s.cfg.PeriodFields()...),
	)
}

// selectPeriods picks the selection mode from req: explicit labels, a
// range (an open bound defaults to the calendar edge) or the whole
// calendar.
func (s *Service) selectPeriods(store *statement.Store, req models.AnalyzeRequest) (statement.Selection, error) {
	switch {
	case len(req.Periods) > 0:
		return statement.SelectLabels(s.calendar, store, req.Periods), nil
	case req.From != "" || req.To != "":
		from, to := req.From, req.To
		if first, ok := s.calendar.First(); ok && from == "" {
			from = first.String()
		}
		if last, ok := s.calendar.Last(); ok && to == "" {
			to = last.String()
		}
		if from == "" || to == "" {
			return statement.Selection{}, fmt.Errorf("%w: open range with an empty calendar", statement.ErrInvalidRange)
		}
		return statement.SelectRangeLabels(s.calendar, store, from, to)
	default:
		return statement.SelectAll(s.calendar, store), nil
	}
}
