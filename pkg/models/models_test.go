package models

import (
	"encoding/json"
	"testing"
)

func TestStatementDocumentSectionKeys(t *testing.T) {
	raw := `{"IncomeStatement":[{"Date":"Mar-16","Revenue":100}],"BalanceSheet":[],"CashFlow":[{"Date":"Mar-16"}]}`
	var doc StatementDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("json.Unmarshal(StatementDocument) error: %v", err)
	}
	if doc.RecordCount() != 2 {
		t.Errorf("RecordCount: got %d, want 2", doc.RecordCount())
	}
	if doc.IncomeStatement[0]["Date"] != "Mar-16" {
		t.Errorf("Date: got %v", doc.IncomeStatement[0]["Date"])
	}
}

func TestDocumentFormatExtension(t *testing.T) {
	tests := map[DocumentFormat]string{
		FormatJSON:  ".json",
		FormatHJSON: ".hjson",
		FormatHTML:  ".html",
	}
	for f, want := range tests {
		if got := f.Extension(); got != want {
			t.Errorf("%s.Extension() = %q, want %q", f, got, want)
		}
	}
}

func TestCompareRequestForTicker(t *testing.T) {
	c := CompareRequest{
		Tickers: []string{"TCS", "INFY"},
		From:    "Dec-15",
		To:      "Sep-16",
		Metrics: []string{"Revenue"},
	}
	r := c.ForTicker("INFY")
	if r.Ticker != "INFY" || r.From != "Dec-15" || r.To != "Sep-16" || len(r.Metrics) != 1 {
		t.Errorf("ForTicker: got %+v", r)
	}
}
