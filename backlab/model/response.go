package model

// TimeSeries is a pair of parallel arrays as returned by the backtest
// service.
type TimeSeries struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// Len returns the number of points, bounded by the shorter array in
// case the service ever returns ragged data.
func (ts TimeSeries) Len() int {
	if len(ts.Dates) < len(ts.Values) {
		return len(ts.Dates)
	}
	return len(ts.Values)
}

type Signal struct {
	Date   string   `json:"date"`
	Type   string   `json:"type"`
	Price  float64  `json:"price"`
	Symbol *string  `json:"symbol,omitempty"`
	Size   *float64 `json:"size,omitempty"`
}

type Trade struct {
	EnterDate  string  `json:"enter_date"`
	EnterPrice float64 `json:"enter_price"`
	ExitDate   string  `json:"exit_date"`
	ExitPrice  float64 `json:"exit_price"`
	PnL        float64 `json:"pnl"`
	Ret        float64 `json:"ret"`
	Symbol     *string `json:"symbol,omitempty"`
}

type HistogramBin struct {
	BinStart float64 `json:"bin_start"`
	BinEnd   float64 `json:"bin_end"`
	Count    int     `json:"count"`
}

// StatSummary holds the summary statistics the service computes for a
// return series.
type StatSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Skew   float64 `json:"skew"`
	Kurt   float64 `json:"kurt"`
}

type Histogram struct {
	Horizon    int            `json:"horizon"`
	Bins       []HistogramBin `json:"bins"`
	Stats      StatSummary    `json:"stats"`
	SampleSize int            `json:"sample_size"`
}

// BacktestResponse is the full result returned by the backtest
// service. It is treated as immutable once received; every derived
// artifact is computed from it without modifying it.
type BacktestResponse struct {
	EquityCurve    TimeSeries             `json:"equity_curve"`
	DrawdownCurve  TimeSeries             `json:"drawdown_curve"`
	PriceSeries    *TimeSeries            `json:"price_series,omitempty"`
	Signals        []Signal               `json:"signals"`
	Trades         []Trade                `json:"trades"`
	Metrics        map[string]float64     `json:"metrics"`
	Histogram      *Histogram             `json:"histogram,omitempty"`
	IndicatorStats map[string]StatSummary `json:"indicator_stats,omitempty"`
	UniverseSize   int                    `json:"universe_size"`
	TradesCount    int                    `json:"trades_count"`
}
