package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/phuslu/log"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

// lookupOrder is the preference between formats when a ticker has more
// than one document.
var lookupOrder = []models.DocumentFormat{models.FormatJSON, models.FormatHJSON, models.FormatHTML}

type section struct {
	typ  statement.StatementType
	path string
}

// FileSource reads ticker documents from a directory: <dir>/<TICKER>.json,
// .hjson or .html. Sections of JSON documents are located by JSONPath.
type FileSource struct {
	dir         string
	sections    []section
	periodField string
	cache       *Cache
}

type cachedDocument struct {
	doc     *models.StatementDocument
	modTime time.Time
}

// NewFileSource creates a file source from the data settings.
func NewFileSource(cfg config.DataConfig) *FileSource {
	periodField := cfg.PeriodField
	if periodField == "" {
		periodField = statement.DefaultPeriodFields[0]
	}
	return &FileSource{
		dir: cfg.Dir,
		sections: []section{
			{statement.IncomeStatement, orDefault(cfg.IncomePath, "$.IncomeStatement")},
			{statement.BalanceSheet, orDefault(cfg.BalancePath, "$.BalanceSheet")},
			{statement.CashFlow, orDefault(cfg.CashFlowPath, "$.CashFlow")},
		},
		periodField: periodField,
		cache:       NewCache(time.Duration(cfg.CacheTTL) * time.Second),
	}
}

// Name returns the data source name.
func (s *FileSource) Name() string { return "files:" + s.dir }

// Dir returns the document directory.
func (s *FileSource) Dir() string { return s.dir }

// Load reads and decodes the document for ticker. Cached documents are
// reused until their TTL expires or the file changes on disk.
func (s *FileSource) Load(ctx context.Context, ticker string) (*models.StatementDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol := utils.NormalizeTicker(ticker)
	if !utils.IsValidTicker(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}

	path, format, info, err := s.locate(symbol)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(symbol); ok {
		c := cached.(cachedDocument)
		if c.modTime.Equal(info.ModTime()) && c.doc.Path == path {
			return c.doc, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := s.Decode(symbol, format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path

	log.Debug().Str("ticker", symbol).Str("path", path).Str("format", string(format)).
		Int("records", doc.RecordCount()).Strs("missing_sections", doc.MissingSections).
		Bool("repaired", doc.Repaired).Msg("document loaded")

	s.cache.Set(symbol, cachedDocument{doc: doc, modTime: info.ModTime()})
	return doc, nil
}

// Decode turns raw document bytes into a statement document.
func (s *FileSource) Decode(ticker string, format models.DocumentFormat, data []byte) (*models.StatementDocument, error) {
	doc := &models.StatementDocument{
		Ticker:   ticker,
		Format:   format,
		LoadedAt: utils.NowIST(),
	}

	if format == models.FormatHTML {
		sections, err := ParseScreenerHTML(bytes.NewReader(data), s.periodField)
		if err != nil {
			return nil, err
		}
		for _, sec := range s.sections {
			entries := sections[sec.typ]
			if entries == nil {
				doc.MissingSections = append(doc.MissingSections, string(sec.typ))
			}
			setSection(doc, sec.typ, entries)
		}
		return doc, nil
	}

	root, repaired, err := decodeLenient(data, format)
	if err != nil {
		return nil, err
	}
	doc.Repaired = repaired

	for _, sec := range s.sections {
		entries, found, dropped, err := extractSection(root, sec.path)
		if err != nil {
			return nil, fmt.Errorf("%s section: %w", sec.typ, err)
		}
		if !found {
			doc.MissingSections = append(doc.MissingSections, string(sec.typ))
		}
		doc.DroppedEntries += dropped
		setSection(doc, sec.typ, entries)
	}
	return doc, nil
}

// List returns every ticker with a readable document, one entry per ticker.
func (s *FileSource) List(ctx context.Context) ([]models.TickerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	byTicker := make(map[string]models.TickerInfo)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ticker, format, ok := TickerFromPath(e.Name())
		if !ok {
			continue
		}
		if prev, seen := byTicker[ticker]; seen && formatRank(prev.Format) <= formatRank(format) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		byTicker[ticker] = models.TickerInfo{
			Ticker:   ticker,
			Format:   format,
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
	}

	out := make([]models.TickerInfo, 0, len(byTicker))
	for _, ti := range byTicker {
		out = append(out, ti)
	}
	slices.SortFunc(out, func(a, b models.TickerInfo) int { return strings.Compare(a.Ticker, b.Ticker) })
	return out, nil
}

// Invalidate drops the cached document for ticker.
func (s *FileSource) Invalidate(ticker string) {
	s.cache.Invalidate(utils.NormalizeTicker(ticker))
}

// SweepCache drops expired documents every interval until ctx is done.
func (s *FileSource) SweepCache(ctx context.Context, interval time.Duration) error {
	return s.cache.Sweep(ctx, interval)
}

// TickerFromPath derives the ticker and format from a document file name.
func TickerFromPath(name string) (string, models.DocumentFormat, bool) {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	for _, f := range lookupOrder {
		if ext != f.Extension() {
			continue
		}
		ticker := utils.NormalizeTicker(strings.TrimSuffix(base, filepath.Ext(base)))
		if !utils.IsValidTicker(ticker) {
			return "", "", false
		}
		return ticker, f, true
	}
	return "", "", false
}

// locate finds the preferred document for symbol, matching file names
// case-insensitively.
func (s *FileSource) locate(symbol string) (string, models.DocumentFormat, os.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil, fmt.Errorf("%w: %s (no data directory %s)", ErrTickerNotFound, symbol, s.dir)
		}
		return "", "", nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	best, bestRank := "", len(lookupOrder)
	var bestFormat models.DocumentFormat
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ticker, format, ok := TickerFromPath(e.Name())
		if !ok || ticker != symbol {
			continue
		}
		if r := formatRank(format); r < bestRank {
			best, bestRank, bestFormat = e.Name(), r, format
		}
	}
	if best == "" {
		return "", "", nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	path := filepath.Join(s.dir, best)
	info, err := os.Stat(path)
	if err != nil {
		return "", "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return path, bestFormat, info, nil
}

// decodeLenient decodes strict JSON first, then Hjson, then a repaired
// version of the input. repaired reports whether the strict pass failed.
// Whatever the pass, the document root must be an object.
func decodeLenient(data []byte, format models.DocumentFormat) (root any, repaired bool, err error) {
	if format == models.FormatHJSON {
		if err := hjson.Unmarshal(data, &root); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrDocumentFormat, err)
		}
		if !isObject(root) {
			return nil, false, fmt.Errorf("%w: document root is %T, want object", ErrDocumentFormat, root)
		}
		return root, false, nil
	}

	root, strictErr := decodeStrict(data)
	if strictErr == nil {
		if !isObject(root) {
			return nil, false, fmt.Errorf("%w: document root is %T, want object", ErrDocumentFormat, root)
		}
		return root, false, nil
	}
	// Hjson reads almost any text as a quoteless string, so only an
	// object counts as a successful fallback.
	if err := hjson.Unmarshal(data, &root); err == nil && isObject(root) {
		return root, true, nil
	}
	fixed, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrDocumentFormat, strictErr)
	}
	root, err = decodeStrict([]byte(fixed))
	if err != nil || !isObject(root) {
		return nil, false, fmt.Errorf("%w: %w", ErrDocumentFormat, strictErr)
	}
	return root, true, nil
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func decodeStrict(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after document")
	}
	return root, nil
}

// extractSection resolves path against root. A path that does not resolve
// or resolves to null is reported as not found; any non-array value is a
// format error. Entries that are not objects are dropped and counted.
func extractSection(root any, path string) (entries []map[string]any, found bool, dropped int, err error) {
	v, err := jsonpath.Get(path, root)
	if err != nil || v == nil {
		return nil, false, 0, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, true, 0, fmt.Errorf("%w: %s is %T, want array", ErrDocumentFormat, path, v)
	}
	entries = make([]map[string]any, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, m)
	}
	return entries, true, dropped, nil
}

func formatRank(f models.DocumentFormat) int {
	if i := slices.Index(lookupOrder, f); i >= 0 {
		return i
	}
	return len(lookupOrder)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func setSection(doc *models.StatementDocument, typ statement.StatementType, entries []map[string]any) {
	switch typ {
	case statement.IncomeStatement:
		doc.IncomeStatement = entries
	case statement.BalanceSheet:
		doc.BalanceSheet = entries
	case statement.CashFlow:
		doc.CashFlow = entries
	}
}
