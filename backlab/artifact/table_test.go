package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/backlab/backlab/model"
)

func sampleResponse() *model.BacktestResponse {
	sym := "AAPL"
	size := 10.0
	return &model.BacktestResponse{
		EquityCurve: model.TimeSeries{
			Dates:  []string{"2021-01-04", "2021-01-05", "2021-01-06"},
			Values: []float64{1.0, 1.012345678, 0.998},
		},
		DrawdownCurve: model.TimeSeries{
			Dates:  []string{"2021-01-04", "2021-01-05", "2021-01-06"},
			Values: []float64{0, 0, -0.0142},
		},
		Signals: []model.Signal{
			{Date: "2021-01-04", Type: "buy", Price: 131.01, Symbol: &sym, Size: &size},
			{Date: "2021-01-05", Type: "sell", Price: 132.5},
		},
		Trades: []model.Trade{
			{EnterDate: "2021-01-04", EnterPrice: 131.01, ExitDate: "2021-01-05",
				ExitPrice: 132.5, PnL: 1.49, Ret: 0.01137, Symbol: &sym},
		},
		Metrics: map[string]float64{
			"sharpe":        1.4,
			"max_drawdown":  -0.0142,
			"ending_equity": 0.998,
		},
		Histogram: &model.Histogram{
			Horizon: 1,
			Bins: []model.HistogramBin{
				{BinStart: -0.01, BinEnd: 0, Count: 3},
				{BinStart: 0, BinEnd: 0.01, Count: 5},
			},
			Stats:      model.StatSummary{Mean: 0.001, Median: 0.0008, Std: 0.004, Skew: 0.2, Kurt: 3.1},
			SampleSize: 8,
		},
		IndicatorStats: map[string]model.StatSummary{
			"10d": {Mean: 0.01, Median: 0.009, Std: 0.02, Skew: 0.1, Kurt: 2.9},
			"2d":  {Mean: 0.002, Median: 0.001, Std: 0.008, Skew: 0.3, Kurt: 3.0},
		},
		UniverseSize: 42,
		TradesCount:  1,
	}
}

func TestCurveRows(t *testing.T) {
	table := EquityRows(sampleResponse())

	assert.Equal(t, []string{"date", "value"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"2021-01-05", "1.012345678"}, table.Rows[1],
		"values pass through unrounded")
}

func TestSignalRowsAbsentOptionalCells(t *testing.T) {
	table := SignalRows(sampleResponse())

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2021-01-04", "buy", "131.01", "10", "AAPL"}, table.Rows[0])
	assert.Equal(t, []string{"2021-01-05", "sell", "132.5", "", ""}, table.Rows[1])
}

func TestTradeRowsHeader(t *testing.T) {
	table := TradeRows(sampleResponse())

	assert.Equal(t,
		[]string{"symbol", "enter_date", "enter_price", "exit_date", "exit_price", "pnl", "ret"},
		table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "AAPL", table.Rows[0][0])
}

func TestMetricRowsSortedByName(t *testing.T) {
	table := MetricRows(sampleResponse())

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "ending_equity", table.Rows[0][0])
	assert.Equal(t, "max_drawdown", table.Rows[1][0])
	assert.Equal(t, "sharpe", table.Rows[2][0])
}

func TestHistogramRows(t *testing.T) {
	table := HistogramRows(sampleResponse())

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"-0.01", "0", "3"}, table.Rows[0])
}

func TestStatRowsFlattenInNaturalOrder(t *testing.T) {
	table := StatRows(sampleResponse())

	// Two horizons, five statistics each.
	require.Len(t, table.Rows, 10)
	assert.Equal(t, []string{"2d", "mean", "0.002"}, table.Rows[0])
	assert.Equal(t, []string{"2d", "kurt", "3"}, table.Rows[4])
	assert.Equal(t, []string{"10d", "mean", "0.01"}, table.Rows[5],
		"10d sorts after 2d numerically")
}

func TestAbsentSectionsYieldEmptyTables(t *testing.T) {
	resp := &model.BacktestResponse{}

	for _, table := range ResponseTables(resp) {
		assert.True(t, table.Empty(), "section %s", table.Name)
		assert.NotEmpty(t, table.Header, "section %s keeps its header", table.Name)
	}
	assert.True(t, PriceRows(resp).Empty())
}

func TestBuildersAreIdempotent(t *testing.T) {
	resp := sampleResponse()

	first := ResponseTables(resp)
	second := ResponseTables(resp)

	assert.Equal(t, first, second)
}
