// Package artifact derives exportable row sets from a backtest
// response: one table per response section, a CSV encoding, a pretty
// JSON snapshot, and a flattened summary of the submitted form. All
// builders are pure; a missing response section yields an empty table,
// not an error, so callers can skip exports gracefully.
package artifact

import (
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ezquant/backlab/backlab/model"
)

// Table is an ordered row set with a fixed column header, ready for
// CSV encoding or report rendering.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Empty reports whether the table carries no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Section names of the exportable response tables.
const (
	SectionEquity    = "equity"
	SectionDrawdown  = "drawdown"
	SectionPrice     = "price"
	SectionSignals   = "signals"
	SectionTrades    = "trades"
	SectionMetrics   = "metrics"
	SectionHistogram = "histogram"
	SectionStats     = "indicator_stats"
)

// num renders a value in full precision; rounding and display
// formatting are presentation concerns that happen elsewhere.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func curveTable(name string, ts model.TimeSeries) Table {
	t := Table{Name: name, Header: []string{"date", "value"}}
	for i := 0; i < ts.Len(); i++ {
		t.Rows = append(t.Rows, []string{ts.Dates[i], num(ts.Values[i])})
	}
	return t
}

// EquityRows returns the equity curve as date/value rows.
func EquityRows(resp *model.BacktestResponse) Table {
	return curveTable(SectionEquity, resp.EquityCurve)
}

// DrawdownRows returns the drawdown curve as date/value rows.
func DrawdownRows(resp *model.BacktestResponse) Table {
	return curveTable(SectionDrawdown, resp.DrawdownCurve)
}

// PriceRows returns the optional price series as date/value rows.
func PriceRows(resp *model.BacktestResponse) Table {
	if resp.PriceSeries == nil {
		return Table{Name: SectionPrice, Header: []string{"date", "value"}}
	}
	return curveTable(SectionPrice, *resp.PriceSeries)
}

// SignalRows returns one row per signal. Absent size or symbol render
// as empty cells.
func SignalRows(resp *model.BacktestResponse) Table {
	t := Table{Name: SectionSignals, Header: []string{"date", "type", "price", "size", "symbol"}}
	for _, s := range resp.Signals {
		size := ""
		if s.Size != nil {
			size = num(*s.Size)
		}
		symbol := ""
		if s.Symbol != nil {
			symbol = *s.Symbol
		}
		t.Rows = append(t.Rows, []string{s.Date, s.Type, num(s.Price), size, symbol})
	}
	return t
}

// TradeRows returns one row per trade.
func TradeRows(resp *model.BacktestResponse) Table {
	t := Table{Name: SectionTrades, Header: []string{"symbol", "enter_date", "enter_price", "exit_date", "exit_price", "pnl", "ret"}}
	for _, tr := range resp.Trades {
		symbol := ""
		if tr.Symbol != nil {
			symbol = *tr.Symbol
		}
		t.Rows = append(t.Rows, []string{
			symbol,
			tr.EnterDate, num(tr.EnterPrice),
			tr.ExitDate, num(tr.ExitPrice),
			num(tr.PnL), num(tr.Ret),
		})
	}
	return t
}

// MetricRows returns the metrics mapping as name/value rows, sorted by
// metric name for a stable export.
func MetricRows(resp *model.BacktestResponse) Table {
	t := Table{Name: SectionMetrics, Header: []string{"metric", "value"}}
	names := maps.Keys(resp.Metrics)
	slices.Sort(names)
	for _, name := range names {
		t.Rows = append(t.Rows, []string{name, num(resp.Metrics[name])})
	}
	return t
}

// HistogramRows returns the return-distribution histogram bins.
func HistogramRows(resp *model.BacktestResponse) Table {
	t := Table{Name: SectionHistogram, Header: []string{"bin_start", "bin_end", "count"}}
	if resp.Histogram == nil {
		return t
	}
	for _, b := range resp.Histogram.Bins {
		t.Rows = append(t.Rows, []string{num(b.BinStart), num(b.BinEnd), strconv.Itoa(b.Count)})
	}
	return t
}

// statOrder fixes the row order of the per-horizon summary statistics.
var statOrder = []struct {
	name  string
	value func(model.StatSummary) float64
}{
	{"mean", func(s model.StatSummary) float64 { return s.Mean }},
	{"median", func(s model.StatSummary) float64 { return s.Median }},
	{"std", func(s model.StatSummary) float64 { return s.Std }},
	{"skew", func(s model.StatSummary) float64 { return s.Skew }},
	{"kurt", func(s model.StatSummary) float64 { return s.Kurt }},
}

// StatRows flattens the nested horizon -> statistic -> value mapping
// into one row per leaf value. Horizons sort in natural numeric order
// so "10d" comes after "2d".
func StatRows(resp *model.BacktestResponse) Table {
	t := Table{Name: SectionStats, Header: []string{"horizon", "metric", "value"}}
	if len(resp.IndicatorStats) == 0 {
		return t
	}
	horizons := maps.Keys(resp.IndicatorStats)
	slices.SortFunc(horizons, horizonLess)
	for _, h := range horizons {
		summary := resp.IndicatorStats[h]
		for _, stat := range statOrder {
			t.Rows = append(t.Rows, []string{h, stat.name, num(stat.value(summary))})
		}
	}
	return t
}

// horizonLess orders horizon labels like "1d", "5d", "10d" by their
// leading number, falling back to lexical order.
func horizonLess(a, b string) bool {
	na, oka := leadingInt(a)
	nb, okb := leadingInt(b)
	if oka && okb && na != nb {
		return na < nb
	}
	return a < b
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

// ResponseTables returns every exportable response section in report
// order.
func ResponseTables(resp *model.BacktestResponse) []Table {
	return []Table{
		EquityRows(resp),
		DrawdownRows(resp),
		PriceRows(resp),
		SignalRows(resp),
		TradeRows(resp),
		MetricRows(resp),
		HistogramRows(resp),
		StatRows(resp),
	}
}
