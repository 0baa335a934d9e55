package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIndicatorsMarshalMinimalShape(t *testing.T) {
	set := IndicatorSet{Policy: "any", MaxHorizon: 10, HistHorizon: 1}

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))

	for _, name := range []string{"rsi", "macd", "obv", "ema", "adx", "aroon", "stoch"} {
		assert.JSONEq(t, `{"use":false}`, string(payload[name]), name)
	}
}

func TestEnabledIndicatorsCarryParameters(t *testing.T) {
	set := IndicatorSet{
		RSI:    RSIConfig{Use: true, N: 14, Rule: "oversold", Oversold: Float64(30)},
		MACD:   MACDConfig{Use: true, Fast: 12, Slow: 26, Signal: 9, Rule: "signal"},
		Stoch:  StochConfig{Use: true, K: 14, D: 3, Rule: "signal", Threshold: 20},
		Policy: "any", MaxHorizon: 10, HistHorizon: 1,
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.JSONEq(t, `{"use":true,"n":14,"rule":"oversold","oversold":30}`,
		string(payload["rsi"]))
	assert.JSONEq(t, `{"use":true,"fast":12,"slow":26,"signal":9,"rule":"signal"}`,
		string(payload["macd"]))
	assert.JSONEq(t, `{"use":true,"k":14,"d":3,"rule":"signal","threshold":20}`,
		string(payload["stoch"]))
}

func TestFiltersEmpty(t *testing.T) {
	assert.True(t, Filters{}.Empty())
	assert.False(t, Filters{Sectors: []string{"Energy"}}.Empty())
	assert.False(t, Filters{McapMin: Float64(0)}.Empty())
}

func TestTimeSeriesLenBoundedByShorterArray(t *testing.T) {
	ts := TimeSeries{Dates: []string{"2021-01-04", "2021-01-05"}, Values: []float64{1.0}}
	assert.Equal(t, 1, ts.Len())
}
