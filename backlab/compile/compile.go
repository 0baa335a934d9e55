// Package compile turns a form snapshot into a normalized backtest
// request. Compilation is a pure function: it never touches the
// network, the form, or any ambient state, and it either returns a
// request that satisfies the service's constraints or a
// ValidationError naming the offending field.
package compile

import (
	"fmt"
	"strings"
	"time"

	"github.com/StudioSol/set"
	"github.com/samber/lo"

	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/model"
)

const dateLayout = "2006-01-02"

// ValidationError reports a form field that prevents compilation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid form field %q: %s", e.Field, e.Message)
}

// Compile builds the backtest request from a form snapshot.
func Compile(snap form.Snapshot) (*model.BacktestRequest, error) {
	start, err := normalizeDate(snap.Start)
	if err != nil {
		return nil, &ValidationError{Field: "start", Message: err.Error()}
	}
	end, err := normalizeDate(snap.End)
	if err != nil {
		return nil, &ValidationError{Field: "end", Message: err.Error()}
	}

	if snap.Strategy == "" {
		return nil, &ValidationError{Field: "strategy", Message: "missing"}
	}
	if snap.Capital != nil && *snap.Capital < 0 {
		return nil, &ValidationError{Field: "capital", Message: "must be non-negative"}
	}
	if snap.HistBins < 0 {
		return nil, &ValidationError{Field: "hist_bins", Message: "must be a positive integer"}
	}

	req := &model.BacktestRequest{
		Strategy:   snap.Strategy,
		Start:      start,
		End:        end,
		Indicators: compileIndicators(snap),
		Filters:    compileFilters(snap),
		Universe:   normalizeTickers(snap.Universe),
		Capital:    snap.Capital,
		FeeBps:     snap.FeeBps,
	}

	if snap.HoldDays > 0 {
		req.HoldDays = model.Int(snap.HoldDays)
	}
	req.StopLossPct = toFraction(snap.StopLossPct)
	req.TakeProfitPct = toFraction(snap.TakeProfitPct)
	if snap.HistBins > 0 {
		req.HistBins = model.Int(snap.HistBins)
	}

	// The scoring engine reads hold/stop/target from the indicators
	// block as well.
	req.Indicators.HoldDays = req.HoldDays
	req.Indicators.StopLossPct = req.StopLossPct
	req.Indicators.TakeProfitPct = req.TakeProfitPct

	return req, nil
}

// normalizeDate validates a calendar date and re-formats it into the
// canonical YYYY-MM-DD form.
func normalizeDate(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("missing")
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("not a calendar date (want YYYY-MM-DD)")
	}
	return t.Format(dateLayout), nil
}

// normalizeTickers trims, uppercases and drops blank symbols. A fully
// blank list normalizes to nil so the field is omitted from the
// request.
func normalizeTickers(raw []string) []string {
	cleaned := lo.FilterMap(raw, func(tok string, _ int) (string, bool) {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		return tok, tok != ""
	})
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

// compileFilters returns nil unless at least one sub-filter is
// populated; an empty filters object must never be sent.
func compileFilters(snap form.Snapshot) *model.Filters {
	f := model.Filters{
		Sectors:        dedupeSectors(snap.Sectors),
		McapMin:        snap.McapMin,
		McapMax:        snap.McapMax,
		ExcludeTickers: normalizeTickers(snap.ExcludeTickers),
	}
	if f.Empty() {
		return nil
	}
	return &f
}

// dedupeSectors removes duplicate sector names, keeping first-seen
// order.
func dedupeSectors(raw []string) []string {
	unique := set.NewLinkedHashSetString()
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			unique.Add(s)
		}
	}
	if unique.Length() == 0 {
		return nil
	}
	out := make([]string, 0, unique.Length())
	for s := range unique.Iter() {
		out = append(out, s)
	}
	return out
}

// toFraction converts a UI percentage (0-100) into the fraction the
// service expects. An unset value stays unset; zero is never used as a
// stand-in for "disabled".
func toFraction(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	return model.Float64(*pct / 100)
}

func compileIndicators(snap form.Snapshot) model.IndicatorSet {
	out := model.IndicatorSet{
		MACD: model.MACDConfig{
			Use:    snap.UseMACD,
			Fast:   snap.MACDFast,
			Slow:   snap.MACDSlow,
			Signal: snap.MACDSignal,
			Rule:   snap.MACDRule,
		},
		OBV: model.OBVConfig{
			Use:  snap.UseOBV,
			Rule: snap.OBVRule,
		},
		EMA: model.EMAConfig{
			Use:   snap.UseEMA,
			Short: snap.EMAShort,
			Long:  snap.EMALong,
		},
		ADX: model.ADXConfig{
			Use: snap.UseADX,
			N:   snap.ADXN,
			Min: snap.ADXMin,
		},
		Aroon: model.AroonConfig{
			Use:  snap.UseAroon,
			N:    snap.AroonN,
			Up:   snap.AroonUp,
			Down: snap.AroonDown,
		},
		Stoch: model.StochConfig{
			Use:       snap.UseStoch,
			K:         snap.StochK,
			D:         snap.StochD,
			Rule:      snap.StochRule,
			Threshold: snap.StochThreshold,
		},
		Policy:      snap.Policy,
		MaxHorizon:  snap.MaxHorizon,
		HistHorizon: snap.HistHorizon,
	}

	out.RSI = compileRSI(snap)
	if snap.Policy == form.PolicyAtLeastK {
		out.AtLeastK = model.Int(snap.AtLeastK)
	}
	return out
}

// compileRSI routes the single UI threshold into the oversold or
// overbought sub-field depending on the selected mode. Exactly one of
// the two ends up populated.
func compileRSI(snap form.Snapshot) model.RSIConfig {
	cfg := model.RSIConfig{
		Use:  snap.EnableRSI,
		N:    snap.RSIN,
		Rule: snap.RSIMode,
	}
	if !snap.EnableRSI {
		return cfg
	}
	if snap.RSIMode == form.RSIModeOverbought {
		cfg.Overbought = model.Float64(snap.RSIThreshold)
	} else {
		cfg.Oversold = model.Float64(snap.RSIThreshold)
	}
	return cfg
}
