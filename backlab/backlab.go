// Package backlab wires the backtest front-end together: it takes a
// form snapshot, compiles and submits the request, keeps the current
// response, and serves every export (CSV, JSON snapshot, offline
// report) derived from it.
package backlab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/ezquant/backlab/backlab/artifact"
	"github.com/ezquant/backlab/backlab/compile"
	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/model"
	"github.com/ezquant/backlab/backlab/report"
	"github.com/ezquant/backlab/backlab/service"
	"github.com/ezquant/backlab/backlab/storage"
	"github.com/ezquant/backlab/backlab/tools/log"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04",
	})
}

var (
	// ErrNoResponse guards every export entry point: exporting before
	// any backtest response exists is a no-op with a warning, never a
	// crash.
	ErrNoResponse = errors.New("no backtest response available, run a backtest first")

	// ErrBusy rejects a submit while another request is in flight; the
	// UI is expected to disable re-submission, this makes the invariant
	// checkable.
	ErrBusy = errors.New("a backtest request is already in flight")

	// ErrStaleResponse reports a response that arrived for an outdated
	// request generation. The current response is left untouched.
	ErrStaleResponse = errors.New("stale backtest response discarded")
)

// Lab is the front-end session: one current response at a time,
// replaced wholesale by each successful submit.
type Lab struct {
	backtester service.Backtester
	store      service.KV
	history    *storage.History
	notifier   service.Notifier
	sink       report.Sink

	mu         sync.Mutex
	busy       bool
	generation uint64
	request    *model.BacktestRequest
	response   *model.BacktestResponse
	snapshot   form.Snapshot
	capturers  map[report.ChartRole]report.ChartCapturer
}

// Option configures the lab.
type Option func(*Lab)

// WithStore sets the key-value store used for named presets.
func WithStore(store service.KV) Option {
	return func(l *Lab) {
		l.store = store
	}
}

// WithHistory records every successful run in the given history store.
func WithHistory(history *storage.History) Option {
	return func(l *Lab) {
		l.history = history
	}
}

// WithNotifier registers a notifier told about finished and failed
// runs.
func WithNotifier(notifier service.Notifier) Option {
	return func(l *Lab) {
		l.notifier = notifier
	}
}

// WithSink sets where assembled report documents are delivered.
func WithSink(sink report.Sink) Option {
	return func(l *Lab) {
		l.sink = sink
	}
}

// WithLogLevel sets the log level. eg: log.DebugLevel, log.InfoLevel,
// log.WarnLevel, log.ErrorLevel, log.FatalLevel
func WithLogLevel(level log.Level) Option {
	return func(l *Lab) {
		log.SetLevel(level)
	}
}

// NewLab creates a session against the given backtest service.
func NewLab(backtester service.Backtester, options ...Option) *Lab {
	lab := &Lab{
		backtester: backtester,
		sink:       report.FileSink{Dir: "reports"},
		capturers:  make(map[report.ChartRole]report.ChartCapturer),
	}
	for _, option := range options {
		option(lab)
	}
	return lab
}

// Store returns the preset store, nil when none was configured.
func (l *Lab) Store() service.KV { return l.store }

// Submit compiles the snapshot and runs it against the backtest
// service. Only the response to the most recent request may replace
// the current response; anything older is discarded. At most one
// request is in flight at a time.
func (l *Lab) Submit(ctx context.Context, snap form.Snapshot) (*model.BacktestResponse, error) {
	req, err := compile.Compile(snap)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return nil, ErrBusy
	}
	l.busy = true
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	resp, err := l.backtester.RunBacktest(ctx, req)

	l.mu.Lock()
	l.busy = false
	if err != nil {
		l.mu.Unlock()
		if l.notifier != nil {
			l.notifier.OnError(err)
		}
		return nil, err
	}
	if gen != l.generation {
		l.mu.Unlock()
		log.Warnf("discarding stale backtest response (generation %d)", gen)
		return nil, ErrStaleResponse
	}
	l.request = req
	l.response = resp
	l.snapshot = snap
	// Prior chart instances are stale against the new response.
	l.capturers = make(map[report.ChartRole]report.ChartCapturer)
	l.mu.Unlock()

	summary := service.RunSummary{
		Strategy:     req.Strategy,
		Start:        req.Start,
		End:          req.End,
		UniverseSize: resp.UniverseSize,
		TradesCount:  resp.TradesCount,
		Metrics:      resp.Metrics,
	}
	if l.history != nil {
		if err := l.history.Record(req, summary); err != nil {
			log.Warnf("record run history: %v", err)
		}
	}
	if l.notifier != nil {
		l.notifier.OnRunFinished(summary)
	}

	return resp, nil
}

// Response returns the current backtest response, nil before the first
// successful submit.
func (l *Lab) Response() *model.BacktestResponse {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.response
}

// SetCapturer registers the live chart collaborator for a role. The
// registration lasts until the next response arrives.
func (l *Lab) SetCapturer(role report.ChartRole, capturer report.ChartCapturer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.capturers[role] = capturer
}

// current snapshots the exportable state under the lock.
func (l *Lab) current() (*model.BacktestResponse, *model.BacktestRequest, form.Snapshot, map[report.ChartRole]report.ChartCapturer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.response == nil {
		return nil, nil, form.Snapshot{}, nil, ErrNoResponse
	}
	capturers := make(map[report.ChartRole]report.ChartCapturer, len(l.capturers))
	for role, c := range l.capturers {
		capturers[role] = c
	}
	return l.response, l.request, l.snapshot, capturers, nil
}

// ExportCSV renders one response section as CSV text.
func (l *Lab) ExportCSV(section string) (string, error) {
	resp, _, _, _, err := l.current()
	if err != nil {
		return "", err
	}

	for _, table := range artifact.ResponseTables(resp) {
		if table.Name == section {
			return artifact.EncodeCSV(table)
		}
	}
	return "", fmt.Errorf("unknown export section %q", section)
}

// ExportJSON renders the full response as a pretty-printed snapshot.
func (l *Lab) ExportJSON() (string, error) {
	resp, _, _, _, err := l.current()
	if err != nil {
		return "", err
	}
	return artifact.EncodeJSON(resp)
}

// ExportReport captures every registered chart, assembles the offline
// report document and delivers it through the sink, returning the
// saved location.
func (l *Lab) ExportReport() (string, error) {
	resp, req, snap, capturers, err := l.current()
	if err != nil {
		return "", err
	}

	doc, err := report.Assemble(report.Input{
		Response: resp,
		Request:  req,
		Snapshot: snap,
		Images:   report.CaptureAll(capturers),
	})
	if err != nil {
		return "", err
	}
	return l.sink.Save(doc)
}

// Summary prints the response metrics and counters as a table, the way
// a finished run is reviewed in the terminal.
func (l *Lab) Summary() {
	resp, _, _, _, err := l.current()
	if err != nil {
		log.Warn(err)
		return
	}

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Metric", "Value"})

	names := make([]string, 0, len(resp.Metrics))
	for name := range resp.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		table.Append([]string{name, fmt.Sprintf("%.6f", resp.Metrics[name])})
	}
	table.SetFooter([]string{"universe / trades",
		fmt.Sprintf("%d / %d", resp.UniverseSize, resp.TradesCount)})
	table.Render()

	fmt.Println(buffer.String())
}
