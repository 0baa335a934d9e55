package backlab

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezquant/backlab/backlab/artifact"
	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/model"
	"github.com/ezquant/backlab/backlab/report"
	"github.com/ezquant/backlab/backlab/storage"
)

type fakeBacktester struct {
	resp    *model.BacktestResponse
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeBacktester) RunBacktest(ctx context.Context, req *model.BacktestRequest) (*model.BacktestResponse, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testSnapshot() form.Snapshot {
	state := form.NewState()
	state.Start = "2020-01-01"
	state.End = "2021-12-31"
	return state.Snapshot()
}

func testResponse() *model.BacktestResponse {
	return &model.BacktestResponse{
		EquityCurve: model.TimeSeries{
			Dates:  []string{"2021-01-04", "2021-01-05"},
			Values: []float64{1.0, 1.01},
		},
		DrawdownCurve: model.TimeSeries{
			Dates:  []string{"2021-01-04", "2021-01-05"},
			Values: []float64{0, -0.002},
		},
		Metrics:      map[string]float64{"sharpe": 1.2, "max_drawdown": -0.002},
		UniverseSize: 7,
		TradesCount:  0,
	}
}

func TestExportBeforeResponseIsRejected(t *testing.T) {
	lab := NewLab(&fakeBacktester{})

	_, err := lab.ExportCSV(artifact.SectionTrades)
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = lab.ExportJSON()
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = lab.ExportReport()
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestSubmitCompilationFailureSkipsService(t *testing.T) {
	backtester := &fakeBacktester{resp: testResponse()}
	lab := NewLab(backtester)

	snap := testSnapshot()
	snap.Start = ""
	_, err := lab.Submit(context.Background(), snap)
	require.Error(t, err)
	assert.Zero(t, backtester.calls.Load(), "no network call for an invalid form")
}

func TestSubmitAndExport(t *testing.T) {
	history, err := storage.FromMemory()
	require.NoError(t, err)

	lab := NewLab(&fakeBacktester{resp: testResponse()},
		WithHistory(history),
		WithSink(report.FileSink{Dir: t.TempDir()}),
	)

	resp, err := lab.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)
	require.NotNil(t, resp)

	csvText, err := lab.ExportCSV(artifact.SectionEquity)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(csvText, "date,value\n"))

	jsonText, err := lab.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, jsonText, `"universe_size": 7`)

	path, err := lab.ExportReport()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No data available.", "zero trades degrade gracefully")

	runs, err := history.Recent(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "mean_reversion", runs[0].Strategy)
	assert.Equal(t, 7, runs[0].UniverseSize)
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	backtester := &fakeBacktester{resp: testResponse(), release: make(chan struct{})}
	lab := NewLab(backtester)

	done := make(chan error, 1)
	go func() {
		_, err := lab.Submit(context.Background(), testSnapshot())
		done <- err
	}()

	// Wait for the first submit to reach the service.
	require.Eventually(t, func() bool { return backtester.calls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	_, err := lab.Submit(context.Background(), testSnapshot())
	assert.ErrorIs(t, err, ErrBusy)

	close(backtester.release)
	require.NoError(t, <-done)
	assert.NotNil(t, lab.Response())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	backtester := &fakeBacktester{resp: testResponse(), release: make(chan struct{})}
	lab := NewLab(backtester)

	done := make(chan error, 1)
	go func() {
		_, err := lab.Submit(context.Background(), testSnapshot())
		done <- err
	}()

	require.Eventually(t, func() bool { return backtester.calls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// A newer request generation has superseded the in-flight one.
	lab.mu.Lock()
	lab.generation++
	lab.mu.Unlock()

	close(backtester.release)
	assert.ErrorIs(t, <-done, ErrStaleResponse)
	assert.Nil(t, lab.Response(), "an outdated response never becomes current")
}

func TestServiceErrorLeavesResponseEmpty(t *testing.T) {
	lab := NewLab(&fakeBacktester{err: errors.New("Universe filter removed all tickers.")})

	_, err := lab.Submit(context.Background(), testSnapshot())
	require.EqualError(t, err, "Universe filter removed all tickers.")
	assert.Nil(t, lab.Response())
}

func TestUnknownExportSection(t *testing.T) {
	lab := NewLab(&fakeBacktester{resp: testResponse()})
	_, err := lab.Submit(context.Background(), testSnapshot())
	require.NoError(t, err)

	_, err = lab.ExportCSV("bogus")
	assert.Error(t, err)
}
