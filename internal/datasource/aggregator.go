package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// LoadResult is the outcome of loading one ticker.
type LoadResult struct {
	Ticker   string
	Document *models.StatementDocument
	Err      error
}

// Aggregator loads documents for many tickers concurrently.
type Aggregator struct {
	source Source
	limit  int
}

// NewAggregator creates an aggregator over source running at most limit
// loads at once. limit < 1 means one at a time.
func NewAggregator(source Source, limit int) *Aggregator {
	if limit < 1 {
		limit = 1
	}
	return &Aggregator{source: source, limit: limit}
}

// LoadMany loads each ticker. Per-ticker failures are non-fatal and
// reported in the matching LoadResult; duplicate tickers are loaded once.
// The returned error is non-nil only when ctx is done or every load failed.
func (a *Aggregator) LoadMany(ctx context.Context, tickers []string) ([]LoadResult, error) {
	seen := make(map[string]bool, len(tickers))
	var symbols []string
	for _, t := range tickers {
		s := utils.NormalizeTicker(t)
		if seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	results := make([]LoadResult, len(symbols))
	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)

	for i, symbol := range symbols {
		g.Go(func() error {
			doc, err := a.source.Load(gctx, symbol)
			results[i] = LoadResult{Ticker: symbol, Document: doc, Err: err}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
				mu.Unlock()
				log.Warn().Str("ticker", symbol).Err(err).Msg("load failed")
			}
			return nil // non-fatal
		})
	}

	// Wait for all goroutines.
	if err := g.Wait(); err != nil {
		return results, err
	}

	if len(symbols) > 0 && len(errs) == len(symbols) {
		return results, fmt.Errorf("all loads failed: %w", errors.Join(errs...))
	}
	return results, nil
}
