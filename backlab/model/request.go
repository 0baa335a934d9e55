package model

import "encoding/json"

// BacktestRequest is the payload sent to the backtest service. It is
// built once per submit by the compile package and never mutated after
// that. Optional fields are pointers so that "disabled" is encoded as
// an absent key, never as a zero value.
type BacktestRequest struct {
	Strategy      string       `json:"strategy"`
	Start         string       `json:"start"`
	End           string       `json:"end"`
	Indicators    IndicatorSet `json:"indicators"`
	Filters       *Filters     `json:"filters,omitempty"`
	Universe      []string     `json:"universe,omitempty"`
	Capital       *float64     `json:"capital,omitempty"`
	FeeBps        *float64     `json:"fee_bps,omitempty"`
	HoldDays      *int         `json:"hold_days,omitempty"`
	StopLossPct   *float64     `json:"stop_loss_pct,omitempty"`
	TakeProfitPct *float64     `json:"take_profit_pct,omitempty"`
	HistBins      *int         `json:"hist_bins,omitempty"`
}

// Filters narrows the tradable universe. The compiler only attaches a
// Filters value when at least one field is set; an empty filter object
// is never sent.
type Filters struct {
	Sectors        []string `json:"sectors,omitempty"`
	McapMin        *float64 `json:"mcap_min,omitempty"`
	McapMax        *float64 `json:"mcap_max,omitempty"`
	ExcludeTickers []string `json:"exclude_tickers,omitempty"`
}

// Empty reports whether no sub-filter is populated.
func (f Filters) Empty() bool {
	return len(f.Sectors) == 0 && f.McapMin == nil && f.McapMax == nil && len(f.ExcludeTickers) == 0
}

// IndicatorSet bundles the per-indicator configurations together with
// the signal-combination policy and the horizon settings. Hold, stop
// and target are duplicated here for the scoring engine.
type IndicatorSet struct {
	RSI   RSIConfig   `json:"rsi"`
	MACD  MACDConfig  `json:"macd"`
	OBV   OBVConfig   `json:"obv"`
	EMA   EMAConfig   `json:"ema"`
	ADX   ADXConfig   `json:"adx"`
	Aroon AroonConfig `json:"aroon"`
	Stoch StochConfig `json:"stoch"`

	Policy   string `json:"policy"`
	AtLeastK *int   `json:"atleast_k,omitempty"`

	MaxHorizon  int `json:"max_horizon"`
	HistHorizon int `json:"hist_horizon"`

	HoldDays      *int     `json:"hold_days,omitempty"`
	StopLossPct   *float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct *float64 `json:"take_profit_pct,omitempty"`
}

// disabledIndicator is the wire shape of every switched-off indicator:
// a lone use:false with no parameter fields.
type disabledIndicator struct {
	Use bool `json:"use"`
}

// RSIConfig selects an RSI entry rule. Exactly one of Oversold or
// Overbought is set, matching Rule.
type RSIConfig struct {
	Use        bool
	N          int
	Rule       string
	Oversold   *float64
	Overbought *float64
}

func (c RSIConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use        bool     `json:"use"`
		N          int      `json:"n"`
		Rule       string   `json:"rule"`
		Oversold   *float64 `json:"oversold,omitempty"`
		Overbought *float64 `json:"overbought,omitempty"`
	}{true, c.N, c.Rule, c.Oversold, c.Overbought})
}

type MACDConfig struct {
	Use    bool
	Fast   int
	Slow   int
	Signal int
	Rule   string
}

func (c MACDConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use    bool   `json:"use"`
		Fast   int    `json:"fast"`
		Slow   int    `json:"slow"`
		Signal int    `json:"signal"`
		Rule   string `json:"rule"`
	}{true, c.Fast, c.Slow, c.Signal, c.Rule})
}

type OBVConfig struct {
	Use  bool
	Rule string
}

func (c OBVConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use  bool   `json:"use"`
		Rule string `json:"rule"`
	}{true, c.Rule})
}

type EMAConfig struct {
	Use   bool
	Short int
	Long  int
}

func (c EMAConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use   bool `json:"use"`
		Short int  `json:"short"`
		Long  int  `json:"long"`
	}{true, c.Short, c.Long})
}

type ADXConfig struct {
	Use bool
	N   int
	Min float64
}

func (c ADXConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use bool    `json:"use"`
		N   int     `json:"n"`
		Min float64 `json:"min"`
	}{true, c.N, c.Min})
}

type AroonConfig struct {
	Use  bool
	N    int
	Up   float64
	Down float64
}

func (c AroonConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use  bool    `json:"use"`
		N    int     `json:"n"`
		Up   float64 `json:"up"`
		Down float64 `json:"down"`
	}{true, c.N, c.Up, c.Down})
}

type StochConfig struct {
	Use       bool
	K         int
	D         int
	Rule      string
	Threshold float64
}

func (c StochConfig) MarshalJSON() ([]byte, error) {
	if !c.Use {
		return json.Marshal(disabledIndicator{})
	}
	return json.Marshal(struct {
		Use       bool    `json:"use"`
		K         int     `json:"k"`
		D         int     `json:"d"`
		Rule      string  `json:"rule"`
		Threshold float64 `json:"threshold"`
	}{true, c.K, c.D, c.Rule, c.Threshold})
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }
