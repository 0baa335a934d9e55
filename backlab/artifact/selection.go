package artifact

import (
	"strconv"
	"strings"

	"github.com/ezquant/backlab/backlab/form"
)

// EmptyValue is the canonical sentinel rendered for missing, blank or
// zero-length selections.
const EmptyValue = "-"

// SelectionRow is one flattened (section, label, value) triple of the
// form summary.
type SelectionRow struct {
	Section string
	Label   string
	Value   string
}

// SelectionRows flattens a form snapshot into a human-readable
// parameter summary, one row per selection. Values keep the form's
// own vocabulary; enabled indicators list their parameters inline.
func SelectionRows(snap form.Snapshot) []SelectionRow {
	rows := []SelectionRow{
		{"strategy", "preset", str(snap.Strategy)},
		{"strategy", "start", str(snap.Start)},
		{"strategy", "end", str(snap.End)},
		{"execution", "capital", floatPtr(snap.Capital)},
		{"execution", "fee_bps", floatPtr(snap.FeeBps)},
		{"execution", "hold_days", strconv.Itoa(snap.HoldDays)},
		{"execution", "stop_loss_pct", floatPtr(snap.StopLossPct)},
		{"execution", "take_profit_pct", floatPtr(snap.TakeProfitPct)},
		{"signals", "policy", policy(snap)},
		{"signals", "max_horizon", strconv.Itoa(snap.MaxHorizon)},
		{"signals", "hist_horizon", strconv.Itoa(snap.HistHorizon)},
		{"signals", "hist_bins", strconv.Itoa(snap.HistBins)},
		{"indicators", "rsi", rsi(snap)},
		{"indicators", "macd", onOff(snap.UseMACD, "fast", snap.MACDFast, "slow", snap.MACDSlow, "signal", snap.MACDSignal)},
		{"indicators", "obv", obv(snap)},
		{"indicators", "ema", onOff(snap.UseEMA, "short", snap.EMAShort, "long", snap.EMALong)},
		{"indicators", "adx", onOff(snap.UseADX, "n", snap.ADXN)},
		{"indicators", "aroon", onOff(snap.UseAroon, "n", snap.AroonN)},
		{"indicators", "stoch", stoch(snap)},
		{"filters", "sectors", list(snap.Sectors)},
		{"filters", "mcap_min", floatPtr(snap.McapMin)},
		{"filters", "mcap_max", floatPtr(snap.McapMax)},
		{"filters", "exclude_tickers", list(snap.ExcludeTickers)},
		{"filters", "universe", list(snap.Universe)},
	}
	return rows
}

func str(s string) string {
	if strings.TrimSpace(s) == "" {
		return EmptyValue
	}
	return s
}

func floatPtr(v *float64) string {
	if v == nil {
		return EmptyValue
	}
	return num(*v)
}

func list(values []string) string {
	if len(values) == 0 {
		return EmptyValue
	}
	return strings.Join(values, ", ")
}

func policy(snap form.Snapshot) string {
	if snap.Policy == form.PolicyAtLeastK {
		return snap.Policy + " (k=" + strconv.Itoa(snap.AtLeastK) + ")"
	}
	return str(snap.Policy)
}

func onOff(enabled bool, pairs ...any) string {
	if !enabled {
		return "off"
	}
	parts := []string{"on"}
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i].(string)+"="+strconv.Itoa(pairs[i+1].(int)))
	}
	return strings.Join(parts, " ")
}

func rsi(snap form.Snapshot) string {
	if !snap.EnableRSI {
		return "off"
	}
	return "on n=" + strconv.Itoa(snap.RSIN) + " " + snap.RSIMode + "=" + num(snap.RSIThreshold)
}

func obv(snap form.Snapshot) string {
	if !snap.UseOBV {
		return "off"
	}
	return "on rule=" + snap.OBVRule
}

func stoch(snap form.Snapshot) string {
	if !snap.UseStoch {
		return "off"
	}
	return "on k=" + strconv.Itoa(snap.StochK) + " d=" + strconv.Itoa(snap.StochD) +
		" rule=" + snap.StochRule + " threshold=" + num(snap.StochThreshold)
}
