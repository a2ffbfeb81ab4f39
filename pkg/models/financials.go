package models

import "time"

// DocumentFormat is the on-disk encoding of a ticker document.
type DocumentFormat string

const (
	FormatJSON  DocumentFormat = "json"
	FormatHJSON DocumentFormat = "hjson"
	FormatHTML  DocumentFormat = "html"
)

// Extension returns the file extension used for the format.
func (f DocumentFormat) Extension() string { return "." + string(f) }

// StatementDocument is one ticker's raw statements as read from disk:
// three sequences of open field mappings, each carrying a period label.
type StatementDocument struct {
	Ticker          string           `json:"ticker"`
	Path            string           `json:"path"`
	Format          DocumentFormat   `json:"format"`
	IncomeStatement []map[string]any `json:"IncomeStatement"`
	BalanceSheet    []map[string]any `json:"BalanceSheet"`
	CashFlow        []map[string]any `json:"CashFlow"`
	// MissingSections lists sections absent from the document.
	MissingSections []string  `json:"missingSections,omitempty"`
	// DroppedEntries counts section entries that were not objects.
	DroppedEntries int       `json:"droppedEntries,omitempty"`
	Repaired       bool      `json:"repaired,omitempty"`
	LoadedAt       time.Time `json:"loadedAt"`
}

// RecordCount returns the number of raw records across the three sections.
func (d *StatementDocument) RecordCount() int {
	return len(d.IncomeStatement) + len(d.BalanceSheet) + len(d.CashFlow)
}

// TickerInfo describes an available ticker document.
type TickerInfo struct {
	Ticker   string         `json:"ticker"`
	Format   DocumentFormat `json:"format"`
	Size     int64          `json:"size"`
	Modified time.Time      `json:"modified"`
}
