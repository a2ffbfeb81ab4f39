package statement

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// StatementType names one of the three statement collections of a ticker.
type StatementType string

const (
	IncomeStatement StatementType = "IncomeStatement"
	BalanceSheet    StatementType = "BalanceSheet"
	CashFlow        StatementType = "CashFlow"
)

// StatementTypes returns the three statement types in overlay order.
func StatementTypes() []StatementType {
	return []StatementType{IncomeStatement, BalanceSheet, CashFlow}
}

// ParseStatementType accepts the canonical names and a few common aliases.
func ParseStatementType(s string) (StatementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incomestatement", "income", "is", "pl", "profit-loss":
		return IncomeStatement, nil
	case "balancesheet", "balance", "bs":
		return BalanceSheet, nil
	case "cashflow", "cash-flow", "cf":
		return CashFlow, nil
	default:
		return "", fmt.Errorf("unknown statement type %q", s)
	}
}

// DefaultPeriodFields are the keys probed, in order, for a record's period.
var DefaultPeriodFields = []string{"Date", "Period", "date", "period"}

// Record is one statement type's figures for one period.
// A nil value means the figure is present in the document but null or not numeric.
type Record struct {
	Period Period              `json:"period"`
	Fields map[string]*float64 `json:"fields"`
}

// Names returns the record's field names in sorted order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// SkippedRecord describes an input record dropped during Build.
type SkippedRecord struct {
	Source   StatementType `json:"source"`
	Index    int           `json:"index"`
	RawValue string        `json:"rawValue"`
	Reason   string        `json:"reason"`
}

// collection keeps records in encounter order plus a first-match index.
type collection struct {
	records []Record
	first   map[Period]int
}

func (c *collection) add(r Record) {
	if c.first == nil {
		c.first = make(map[Period]int)
	}
	if _, dup := c.first[r.Period]; !dup {
		c.first[r.Period] = len(c.records)
	}
	c.records = append(c.records, r)
}

// Store owns the three statement collections of a single ticker.
// It is immutable once built.
type Store struct {
	ticker      string
	collections map[StatementType]*collection
	skipped     []SkippedRecord
}

type buildOptions struct {
	ticker       string
	periodFields []string
}

// BuildOption customises Build.
type BuildOption func(*buildOptions)

// WithTicker records the ticker the statements belong to.
func WithTicker(ticker string) BuildOption {
	return func(o *buildOptions) { o.ticker = ticker }
}

// WithPeriodFields overrides the keys probed for the period label.
func WithPeriodFields(fields ...string) BuildOption {
	return func(o *buildOptions) {
		if len(fields) > 0 {
			o.periodFields = fields
		}
	}
}

// Build constructs a Store from the three raw statement sequences.
//
// Records without a period field, or whose period fails to parse, are dropped
// and listed in Skipped; they never abort the build.
func Build(income, balance, cashFlow []map[string]any, opts ...BuildOption) *Store {
	o := buildOptions{periodFields: DefaultPeriodFields}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		ticker:      o.ticker,
		collections: make(map[StatementType]*collection, 3),
	}
	raws := map[StatementType][]map[string]any{
		IncomeStatement: income,
		BalanceSheet:    balance,
		CashFlow:        cashFlow,
	}
	for _, typ := range StatementTypes() {
		c := &collection{}
		for i, raw := range raws[typ] {
			rec, skip := buildRecord(raw, o.periodFields)
			if skip != "" {
				s.skipped = append(s.skipped, SkippedRecord{
					Source:   typ,
					Index:    i,
					RawValue: rawPeriod(raw, o.periodFields),
					Reason:   skip,
				})
				continue
			}
			c.add(rec)
		}
		s.collections[typ] = c
	}
	return s
}

func buildRecord(raw map[string]any, periodFields []string) (Record, string) {
	key, label, ok := findPeriod(raw, periodFields)
	if !ok {
		return Record{}, "missing period field"
	}
	p, err := ParsePeriod(label)
	if err != nil {
		return Record{}, err.Error()
	}
	rec := Record{Period: p, Fields: make(map[string]*float64, len(raw))}
	for k, v := range raw {
		if k == key {
			continue
		}
		rec.Fields[k] = toNumber(v)
	}
	return rec, ""
}

func findPeriod(raw map[string]any, fields []string) (key, label string, ok bool) {
	for _, f := range fields {
		v, found := raw[f]
		if !found || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			s = fmt.Sprint(v)
		}
		return f, s, true
	}
	return "", "", false
}

func rawPeriod(raw map[string]any, fields []string) string {
	_, label, _ := findPeriod(raw, fields)
	return label
}

// toNumber converts a decoded JSON value to a nullable float.
// Anything that is not a finite number, or a string holding one, is nil.
func toNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return nil
		}
		f = x
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return nil
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = x
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Ticker returns the ticker given at build time, if any.
func (s *Store) Ticker() string { return s.ticker }

// Skipped lists the records dropped during Build.
func (s *Store) Skipped() []SkippedRecord { return slices.Clone(s.skipped) }

// Lookup returns the first record of the given type whose period equals p.
func (s *Store) Lookup(typ StatementType, p Period) (Record, bool) {
	c, ok := s.collections[typ]
	if !ok {
		return Record{}, false
	}
	i, ok := c.first[p]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Records returns the records of one statement type in encounter order.
func (s *Store) Records(typ StatementType) []Record {
	c, ok := s.collections[typ]
	if !ok {
		return nil
	}
	return slices.Clone(c.records)
}

// Has reports whether any statement type has data for p.
func (s *Store) Has(p Period) bool {
	for _, typ := range StatementTypes() {
		if _, ok := s.Lookup(typ, p); ok {
			return true
		}
	}
	return false
}

// Periods returns every period with at least one record, in chronological order.
func (s *Store) Periods() []Period {
	var all []Period
	for _, typ := range StatementTypes() {
		if c, ok := s.collections[typ]; ok {
			for _, r := range c.records {
				all = append(all, r.Period)
			}
		}
	}
	return UniquePeriods(all)
}

// Len returns the number of records kept across all three collections.
func (s *Store) Len() int {
	n := 0
	for _, c := range s.collections {
		n += len(c.records)
	}
	return n
}

// Empty reports whether no record survived the build.
func (s *Store) Empty() bool { return s.Len() == 0 }
