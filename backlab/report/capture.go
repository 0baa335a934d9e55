// Package report assembles the downloadable offline report: captured
// chart images, the parameter summary, per-section CSV blocks and the
// raw request/response payloads, composed into one self-contained HTML
// document.
package report

import (
	"encoding/base64"
	"sync"

	"github.com/ezquant/backlab/backlab/tools/log"
)

// ChartRole names one of the live charts an image can be captured
// from.
type ChartRole string

const (
	ChartEquity    ChartRole = "equity"
	ChartDrawdown  ChartRole = "drawdown"
	ChartSignals   ChartRole = "signals"
	ChartHistogram ChartRole = "histogram"
)

// ChartRoles lists the chart roles in report order.
var ChartRoles = []ChartRole{ChartEquity, ChartDrawdown, ChartSignals, ChartHistogram}

// Image is an opaque captured chart image.
type Image struct {
	MIME string
	Data []byte
}

// DataURI encodes the image for inlining into the report document.
func (img Image) DataURI() string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ChartCapturer is the capability a live chart collaborator exposes:
// it either yields a current image or reports that none is available
// yet. Implementations must not block indefinitely.
type ChartCapturer interface {
	TryCapture() (Image, bool)
}

// CapturerFunc adapts a function to the ChartCapturer interface.
type CapturerFunc func() (Image, bool)

func (f CapturerFunc) TryCapture() (Image, bool) { return f() }

// CaptureAll snapshots every registered chart concurrently. A failed
// or not-yet-rendered chart simply has no image in the result; partial
// completion is an expected terminal state, never an error.
func CaptureAll(capturers map[ChartRole]ChartCapturer) map[ChartRole]Image {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		images = make(map[ChartRole]Image, len(capturers))
	)

	for role, capturer := range capturers {
		if capturer == nil {
			continue
		}
		wg.Add(1)
		go func(role ChartRole, capturer ChartCapturer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Warnf("chart capture panicked for %s: %v", role, r)
				}
			}()

			img, ok := capturer.TryCapture()
			if !ok {
				log.Warnf("no image captured for %s chart", role)
				return
			}
			mu.Lock()
			images[role] = img
			mu.Unlock()
		}(role, capturer)
	}

	wg.Wait()
	return images
}
