package form

// Strategy preset identifiers.
const (
	PresetMeanReversion = "mean_reversion"
	PresetMomentum      = "momentum"
	PresetMultifactor   = "multifactor"
)

// presets maps a strategy identifier to the field overrides it
// applies. Only the listed fields are touched; everything else keeps
// the user's current value, so custom settings survive a preset
// switch.
var presets = map[string]map[string]any{
	PresetMeanReversion: {
		"enable_rsi":      true,
		"rsi_mode":        RSIModeOversold,
		"rsi_threshold":   30.0,
		"use_stoch":       true,
		"stoch_rule":      "oversold",
		"stoch_threshold": 20.0,
		"use_macd":        false,
		"use_obv":         false,
		"use_ema":         false,
		"use_adx":         false,
		"use_aroon":       false,
	},
	PresetMomentum: {
		"use_macd":        true,
		"use_obv":         true,
		"use_ema":         true,
		"use_adx":         true,
		"use_stoch":       true,
		"stoch_rule":      "signal",
		"stoch_threshold": 20.0,
		"enable_rsi":      false,
	},
	PresetMultifactor: {
		"enable_rsi": true,
		"use_stoch":  true,
		"use_adx":    true,
		"use_aroon":  true,
		"use_macd":   true,
		"use_obv":    true,
		"use_ema":    true,
		"policy":     PolicyAtLeastK,
		"atleast_k":  3,
	},
}

// ApplyPreset overwrites the fields named by the given strategy
// preset and sets the strategy id itself. An unknown identifier is a
// no-op.
func (s *State) ApplyPreset(strategy string) {
	overrides, ok := presets[strategy]
	if !ok {
		return
	}

	s.Strategy = strategy
	for field, value := range overrides {
		s.set(field, value)
	}
}
