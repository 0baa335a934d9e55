package compile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/model"
)

func validSnapshot() form.Snapshot {
	state := form.NewState()
	state.Start = "2020-01-01"
	state.End = "2021-12-31"
	return state.Snapshot()
}

func TestCompileMissingDates(t *testing.T) {
	snap := validSnapshot()
	snap.Start = ""

	_, err := Compile(snap)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "start", vErr.Field)

	snap = validSnapshot()
	snap.End = "  "
	_, err = Compile(snap)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "end", vErr.Field)
}

func TestCompileRejectsBadDate(t *testing.T) {
	snap := validSnapshot()
	snap.End = "31/12/2021"

	_, err := Compile(snap)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "end", vErr.Field)
}

func TestCompileOmitsEmptyFilters(t *testing.T) {
	snap := validSnapshot()
	snap.Sectors = nil
	snap.McapMin = nil
	snap.McapMax = nil
	snap.ExcludeTickers = []string{"  ", ""}

	req, err := Compile(snap)
	require.NoError(t, err)
	assert.Nil(t, req.Filters)

	// The filters key must be entirely absent from the payload, not an
	// empty object.
	data, err := json.Marshal(req)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.NotContains(t, payload, "filters")
}

func TestCompileNormalizesExcludeTickers(t *testing.T) {
	snap := validSnapshot()
	snap.ExcludeTickers = []string{" tsla ", "nvda", ""}

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.Filters)
	assert.Equal(t, []string{"TSLA", "NVDA"}, req.Filters.ExcludeTickers)
}

func TestCompileDeduplicatesSectors(t *testing.T) {
	snap := validSnapshot()
	snap.Sectors = []string{"Energy", "Technology", "Energy", " "}

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.Filters)
	assert.Equal(t, []string{"Energy", "Technology"}, req.Filters.Sectors)
}

func TestCompileConvertsPercentagesToFractions(t *testing.T) {
	snap := validSnapshot()
	snap.StopLossPct = model.Float64(5)
	snap.TakeProfitPct = model.Float64(12.5)

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.StopLossPct)
	require.NotNil(t, req.TakeProfitPct)
	assert.Equal(t, 0.05, *req.StopLossPct)
	assert.Equal(t, 0.125, *req.TakeProfitPct)

	// Duplicated into the indicators block for the scoring engine.
	require.NotNil(t, req.Indicators.StopLossPct)
	assert.Equal(t, 0.05, *req.Indicators.StopLossPct)
}

func TestCompileOmitsUnsetPercentages(t *testing.T) {
	snap := validSnapshot()
	snap.StopLossPct = nil
	snap.TakeProfitPct = nil

	req, err := Compile(snap)
	require.NoError(t, err)
	assert.Nil(t, req.StopLossPct)
	assert.Nil(t, req.TakeProfitPct)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.NotContains(t, payload, "stop_loss_pct")
	assert.NotContains(t, payload, "take_profit_pct")
}

func TestCompileRSIOversold(t *testing.T) {
	snap := validSnapshot()
	snap.EnableRSI = true
	snap.RSIMode = form.RSIModeOversold
	snap.RSIThreshold = 25

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.Indicators.RSI.Oversold)
	assert.Equal(t, 25.0, *req.Indicators.RSI.Oversold)
	assert.Nil(t, req.Indicators.RSI.Overbought)
}

func TestCompileRSIOverbought(t *testing.T) {
	snap := validSnapshot()
	snap.EnableRSI = true
	snap.RSIMode = form.RSIModeOverbought
	snap.RSIThreshold = 75

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.Indicators.RSI.Overbought)
	assert.Equal(t, 75.0, *req.Indicators.RSI.Overbought)
	assert.Nil(t, req.Indicators.RSI.Oversold)
}

func TestCompileDisabledIndicatorShape(t *testing.T) {
	snap := validSnapshot()
	snap.EnableRSI = false
	snap.UseMACD = false

	req, err := Compile(snap)
	require.NoError(t, err)

	data, err := json.Marshal(req.Indicators)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))

	for _, name := range []string{"rsi", "macd"} {
		var block map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(payload[name], &block))
		assert.Len(t, block, 1, "disabled %s must carry only use:false", name)
		assert.JSONEq(t, `false`, string(block["use"]))
	}
}

func TestCompilePolicyAtLeastK(t *testing.T) {
	snap := validSnapshot()
	snap.Policy = form.PolicyAtLeastK
	snap.AtLeastK = 3

	req, err := Compile(snap)
	require.NoError(t, err)
	require.NotNil(t, req.Indicators.AtLeastK)
	assert.Equal(t, 3, *req.Indicators.AtLeastK)

	snap.Policy = form.PolicyAny
	req, err = Compile(snap)
	require.NoError(t, err)
	assert.Nil(t, req.Indicators.AtLeastK)
}

func TestCompileRejectsNegativeCapital(t *testing.T) {
	snap := validSnapshot()
	snap.Capital = model.Float64(-1)

	_, err := Compile(snap)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "capital", vErr.Field)
}

func TestCompileRejectsNegativeHistBins(t *testing.T) {
	snap := validSnapshot()
	snap.HistBins = -1

	_, err := Compile(snap)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "hist_bins", vErr.Field)
}

func TestCompileCarriesHorizons(t *testing.T) {
	snap := validSnapshot()
	snap.MaxHorizon = 15
	snap.HistHorizon = 5
	snap.HoldDays = 3

	req, err := Compile(snap)
	require.NoError(t, err)
	assert.Equal(t, 15, req.Indicators.MaxHorizon)
	assert.Equal(t, 5, req.Indicators.HistHorizon)
	require.NotNil(t, req.HoldDays)
	assert.Equal(t, 3, *req.HoldDays)
	require.NotNil(t, req.Indicators.HoldDays)
	assert.Equal(t, 3, *req.Indicators.HoldDays)
}
