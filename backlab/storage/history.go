// Package storage keeps a local history of submitted backtest runs so
// past configurations and their headline results can be reviewed.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ezquant/backlab/backlab/model"
	"github.com/ezquant/backlab/backlab/service"
)

// Run is one recorded submission with its headline metrics.
type Run struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time `gorm:"index"`
	Strategy     string
	Start        string
	End          string
	UniverseSize int
	TradesCount  int
	Sharpe       float64
	MaxDrawdown  float64
	RequestJSON  string
}

// History is a sqlite-backed run log.
type History struct {
	db *gorm.DB
}

// FromFile opens (and migrates) the history database at path.
func FromFile(path string) (*History, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return &History{db: db}, nil
}

// FromMemory opens an in-memory history, used in tests and one-shot
// runs.
func FromMemory() (*History, error) {
	return FromFile(":memory:")
}

// Record appends a run built from the submitted request and its
// summary.
func (h *History) Record(req *model.BacktestRequest, summary service.RunSummary) error {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request for history: %w", err)
	}

	run := Run{
		CreatedAt:    time.Now(),
		Strategy:     summary.Strategy,
		Start:        summary.Start,
		End:          summary.End,
		UniverseSize: summary.UniverseSize,
		TradesCount:  summary.TradesCount,
		Sharpe:       summary.Metrics["sharpe"],
		MaxDrawdown:  summary.Metrics["max_drawdown"],
		RequestJSON:  string(reqJSON),
	}
	if err := h.db.Create(&run).Error; err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (h *History) Recent(n int) ([]Run, error) {
	var runs []Run
	err := h.db.Order("created_at desc").Limit(n).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
