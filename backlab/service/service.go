// Package service declares the external collaborators the lab depends
// on. Implementations live in client, plus/localkv and notification;
// tests substitute fakes.
package service

import (
	"context"

	"github.com/ezquant/backlab/backlab/model"
)

// Backtester runs a compiled request against the backtest service.
type Backtester interface {
	RunBacktest(ctx context.Context, req *model.BacktestRequest) (*model.BacktestResponse, error)
}

// UniverseProvider serves the selectable sectors and market-cap
// buckets used to populate filter options at form initialization.
type UniverseProvider interface {
	UniverseMeta(ctx context.Context) (*model.UniverseMeta, error)
}

// KV is the small key-value surface behind which preset persistence
// hides, so alternate backends can be substituted without touching the
// compiler.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// RunSummary is the headline result handed to notifiers and the run
// history.
type RunSummary struct {
	Strategy     string
	Start        string
	End          string
	UniverseSize int
	TradesCount  int
	Metrics      map[string]float64
}

// Notifier is told when a backtest run finishes or fails. A nil
// notifier means silent operation.
type Notifier interface {
	OnRunFinished(summary RunSummary)
	OnError(err error)
}
