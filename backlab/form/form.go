// Package form holds the selection state a user builds up before
// submitting a backtest: strategy, date range, execution settings,
// per-indicator switches and parameters, and universe filters. The
// state is owned by the UI layer; the compiler only ever sees an
// immutable snapshot taken at submit time.
package form

// State is the live, mutable form selection state. Field names follow
// the backtest service's configuration vocabulary so that presets and
// YAML form files use the same names end to end.
type State struct {
	Strategy string `yaml:"strategy"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`

	Capital *float64 `yaml:"capital,omitempty"`
	FeeBps  *float64 `yaml:"fee_bps,omitempty"`

	HoldDays      int      `yaml:"hold_days"`
	StopLossPct   *float64 `yaml:"stop_loss_pct,omitempty"`
	TakeProfitPct *float64 `yaml:"take_profit_pct,omitempty"`

	MaxHorizon  int `yaml:"max_horizon"`
	HistHorizon int `yaml:"hist_horizon"`
	HistBins    int `yaml:"hist_bins"`

	Policy   string `yaml:"policy"`
	AtLeastK int    `yaml:"atleast_k"`

	Sectors        []string `yaml:"sectors,omitempty"`
	McapMin        *float64 `yaml:"mcap_min,omitempty"`
	McapMax        *float64 `yaml:"mcap_max,omitempty"`
	ExcludeTickers []string `yaml:"exclude_tickers,omitempty"`
	Universe       []string `yaml:"universe,omitempty"`

	EnableRSI    bool    `yaml:"enable_rsi"`
	RSIN         int     `yaml:"rsi_n"`
	RSIMode      string  `yaml:"rsi_mode"`
	RSIThreshold float64 `yaml:"rsi_threshold"`

	UseStoch       bool    `yaml:"use_stoch"`
	StochK         int     `yaml:"stoch_k"`
	StochD         int     `yaml:"stoch_d"`
	StochRule      string  `yaml:"stoch_rule"`
	StochThreshold float64 `yaml:"stoch_threshold"`

	UseADX bool    `yaml:"use_adx"`
	ADXN   int     `yaml:"adx_n"`
	ADXMin float64 `yaml:"adx_min"`

	UseAroon  bool    `yaml:"use_aroon"`
	AroonN    int     `yaml:"aroon_n"`
	AroonUp   float64 `yaml:"aroon_up"`
	AroonDown float64 `yaml:"aroon_down"`

	UseMACD    bool   `yaml:"use_macd"`
	MACDFast   int    `yaml:"macd_fast"`
	MACDSlow   int    `yaml:"macd_slow"`
	MACDSignal int    `yaml:"macd_signal"`
	MACDRule   string `yaml:"macd_rule"`

	UseOBV  bool   `yaml:"use_obv"`
	OBVRule string `yaml:"obv_rule"`

	UseEMA   bool `yaml:"use_ema"`
	EMAShort int  `yaml:"ema_short"`
	EMALong  int  `yaml:"ema_long"`
}

// Snapshot is an immutable copy of the form state taken at submit
// time. Later mutation of the live state does not affect it.
type Snapshot = State

// RSI rule modes.
const (
	RSIModeOversold   = "oversold"
	RSIModeOverbought = "overbought"
)

// Signal-combination policies.
const (
	PolicyAny      = "any"
	PolicyAll      = "all"
	PolicyAtLeastK = "atleast_k"
)

// NewState returns a form pre-filled with the service's defaults, the
// same values the form shows before any preset is applied.
func NewState() *State {
	capital := 100_000.0
	feeBps := 1.0

	return &State{
		Strategy: "mean_reversion",

		Capital: &capital,
		FeeBps:  &feeBps,

		HoldDays:    1,
		MaxHorizon:  10,
		HistHorizon: 1,
		HistBins:    50,

		Policy:   PolicyAny,
		AtLeastK: 2,

		RSIN:         14,
		RSIMode:      RSIModeOversold,
		RSIThreshold: 30,

		StochK:         14,
		StochD:         3,
		StochRule:      "signal",
		StochThreshold: 20,

		ADXN:   14,
		ADXMin: 20,

		AroonN:    25,
		AroonUp:   70,
		AroonDown: 30,

		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		MACDRule:   "signal",

		OBVRule: "rise",

		EMAShort: 12,
		EMALong:  26,
	}
}

// Snapshot returns a deep copy of the state. Slices are cloned so the
// snapshot cannot be changed through the live form afterwards.
func (s *State) Snapshot() Snapshot {
	snap := *s
	snap.Sectors = append([]string(nil), s.Sectors...)
	snap.ExcludeTickers = append([]string(nil), s.ExcludeTickers...)
	snap.Universe = append([]string(nil), s.Universe...)
	if s.Capital != nil {
		v := *s.Capital
		snap.Capital = &v
	}
	if s.FeeBps != nil {
		v := *s.FeeBps
		snap.FeeBps = &v
	}
	if s.StopLossPct != nil {
		v := *s.StopLossPct
		snap.StopLossPct = &v
	}
	if s.TakeProfitPct != nil {
		v := *s.TakeProfitPct
		snap.TakeProfitPct = &v
	}
	if s.McapMin != nil {
		v := *s.McapMin
		snap.McapMin = &v
	}
	if s.McapMax != nil {
		v := *s.McapMax
		snap.McapMax = &v
	}
	return snap
}

// set writes a single named field. Unknown names and mismatched types
// are ignored; presets are advisory, not mandatory.
func (s *State) set(field string, value any) {
	switch field {
	case "strategy":
		if v, ok := value.(string); ok {
			s.Strategy = v
		}
	case "policy":
		if v, ok := value.(string); ok {
			s.Policy = v
		}
	case "atleast_k":
		if v, ok := value.(int); ok {
			s.AtLeastK = v
		}
	case "hold_days":
		if v, ok := value.(int); ok {
			s.HoldDays = v
		}
	case "enable_rsi":
		if v, ok := value.(bool); ok {
			s.EnableRSI = v
		}
	case "rsi_n":
		if v, ok := value.(int); ok {
			s.RSIN = v
		}
	case "rsi_mode":
		if v, ok := value.(string); ok {
			s.RSIMode = v
		}
	case "rsi_threshold":
		if v, ok := value.(float64); ok {
			s.RSIThreshold = v
		}
	case "use_stoch":
		if v, ok := value.(bool); ok {
			s.UseStoch = v
		}
	case "stoch_rule":
		if v, ok := value.(string); ok {
			s.StochRule = v
		}
	case "stoch_threshold":
		if v, ok := value.(float64); ok {
			s.StochThreshold = v
		}
	case "use_adx":
		if v, ok := value.(bool); ok {
			s.UseADX = v
		}
	case "use_aroon":
		if v, ok := value.(bool); ok {
			s.UseAroon = v
		}
	case "use_macd":
		if v, ok := value.(bool); ok {
			s.UseMACD = v
		}
	case "macd_rule":
		if v, ok := value.(string); ok {
			s.MACDRule = v
		}
	case "use_obv":
		if v, ok := value.(bool); ok {
			s.UseOBV = v
		}
	case "obv_rule":
		if v, ok := value.(string); ok {
			s.OBVRule = v
		}
	case "use_ema":
		if v, ok := value.(bool); ok {
			s.UseEMA = v
		}
	}
}
