package datasource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
)

// stubSource serves fixed documents and counts loads.
type stubSource struct {
	docs  map[string]*models.StatementDocument
	loads atomic.Int32
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(ctx context.Context, ticker string) (*models.StatementDocument, error) {
	s.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := s.docs[ticker]
	if !ok {
		return nil, ErrTickerNotFound
	}
	return doc, nil
}

func (s *stubSource) List(context.Context) ([]models.TickerInfo, error) { return nil, nil }

func TestAggregatorLoadMany(t *testing.T) {
	src := &stubSource{docs: map[string]*models.StatementDocument{
		"TCS":  {Ticker: "TCS"},
		"INFY": {Ticker: "INFY"},
	}}
	agg := NewAggregator(src, 2)

	results, err := agg.LoadMany(context.Background(), []string{"tcs", "INFY", "TCS.NS", "WIPRO"})
	if err != nil {
		t.Fatalf("LoadMany: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3 (duplicates collapse)", len(results))
	}
	if got := src.loads.Load(); got != 3 {
		t.Errorf("loads: got %d, want 3", got)
	}
	if results[0].Ticker != "TCS" || results[0].Document == nil || results[0].Err != nil {
		t.Errorf("TCS result: %+v", results[0])
	}
	if results[2].Ticker != "WIPRO" || !errors.Is(results[2].Err, ErrTickerNotFound) {
		t.Errorf("WIPRO result: %+v", results[2])
	}
}

func TestAggregatorAllFailed(t *testing.T) {
	agg := NewAggregator(&stubSource{}, 0)
	results, err := agg.LoadMany(context.Background(), []string{"A", "B"})
	if err == nil {
		t.Fatal("expected error when every load fails")
	}
	if !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("joined error should wrap ErrTickerNotFound: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("results: got %d", len(results))
	}
}

func TestAggregatorCancelled(t *testing.T) {
	agg := NewAggregator(&stubSource{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := agg.LoadMany(ctx, []string{"TCS"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAggregatorEmpty(t *testing.T) {
	results, err := NewAggregator(&stubSource{}, 4).LoadMany(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("empty: got %v, %v", results, err)
	}
}
