package models

// AnalyzeRequest selects a ticker and a period window for analysis.
// From/To select a bounded range; Periods an explicit set. When neither is
// given the whole master calendar is used.
type AnalyzeRequest struct {
	Ticker     string   `json:"ticker"               validate:"required,max=32"`
	From       string   `json:"from,omitempty"       validate:"required_with=To"`
	To         string   `json:"to,omitempty"         validate:"required_with=From"`
	Periods    []string `json:"periods,omitempty"    validate:"excluded_with=From,max=200"`
	Metrics    []string `json:"metrics,omitempty"    validate:"omitempty,dive,required"`
	BaseMetric string   `json:"baseMetric,omitempty"`
	BasePeriod string   `json:"basePeriod,omitempty"`
}

// CompareRequest runs the same analysis window over several tickers.
type CompareRequest struct {
	Tickers    []string `json:"tickers"              validate:"required,min=1,dive,required,max=32"`
	From       string   `json:"from,omitempty"       validate:"required_with=To"`
	To         string   `json:"to,omitempty"         validate:"required_with=From"`
	Periods    []string `json:"periods,omitempty"    validate:"excluded_with=From,max=200"`
	Metrics    []string `json:"metrics,omitempty"    validate:"omitempty,dive,required"`
	BaseMetric string   `json:"baseMetric,omitempty"`
}

// ForTicker returns the single-ticker request for one entry of c.
func (c CompareRequest) ForTicker(ticker string) AnalyzeRequest {
	return AnalyzeRequest{
		Ticker:     ticker,
		From:       c.From,
		To:         c.To,
		Periods:    c.Periods,
		Metrics:    c.Metrics,
		BaseMetric: c.BaseMetric,
	}
}
