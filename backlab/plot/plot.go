// Package plot provides simple chart collaborators for the CLI. Each
// renders a small self-contained SVG and exposes it through the
// report.ChartCapturer capability; richer charting front-ends can
// plug in their own capturers without the assembler knowing.
package plot

import (
	"fmt"
	"strings"

	"github.com/ezquant/backlab/backlab/model"
	"github.com/ezquant/backlab/backlab/report"
)

const (
	svgWidth  = 640
	svgHeight = 240
	svgPad    = 10
	svgMIME   = "image/svg+xml"
)

// Series renders a time series as a single polyline.
type Series struct {
	Title string
	Data  model.TimeSeries
	Color string
}

// NewSeries creates a line-chart collaborator for a response curve.
func NewSeries(title string, data model.TimeSeries, color string) *Series {
	return &Series{Title: title, Data: data, Color: color}
}

// TryCapture renders the chart. A series with fewer than two points
// has nothing to draw yet and reports no image.
func (s *Series) TryCapture() (report.Image, bool) {
	n := s.Data.Len()
	if n < 2 {
		return report.Image{}, false
	}

	lo, hi := bounds(s.Data.Values[:n])
	var points []string
	for i := 0; i < n; i++ {
		x := svgPad + float64(i)*(svgWidth-2*svgPad)/float64(n-1)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, yPos(s.Data.Values[i], lo, hi)))
	}

	var b strings.Builder
	svgOpen(&b, s.Title)
	fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>`,
		s.Color, strings.Join(points, " "))
	b.WriteString("</svg>")

	return report.Image{MIME: svgMIME, Data: []byte(b.String())}, true
}

// Histogram renders return-distribution bins as bars.
type Histogram struct {
	Title string
	Data  *model.Histogram
	Color string
}

func NewHistogram(title string, data *model.Histogram, color string) *Histogram {
	return &Histogram{Title: title, Data: data, Color: color}
}

func (h *Histogram) TryCapture() (report.Image, bool) {
	if h.Data == nil || len(h.Data.Bins) == 0 {
		return report.Image{}, false
	}

	maxCount := 0
	for _, bin := range h.Data.Bins {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}
	if maxCount == 0 {
		return report.Image{}, false
	}

	var b strings.Builder
	svgOpen(&b, h.Title)
	barWidth := float64(svgWidth-2*svgPad) / float64(len(h.Data.Bins))
	for i, bin := range h.Data.Bins {
		barHeight := float64(bin.Count) / float64(maxCount) * (svgHeight - 2*svgPad)
		x := svgPad + float64(i)*barWidth
		y := svgHeight - svgPad - barHeight
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="white"/>`,
			x, y, barWidth, barHeight, h.Color)
	}
	b.WriteString("</svg>")

	return report.Image{MIME: svgMIME, Data: []byte(b.String())}, true
}

func svgOpen(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(b, `<title>%s</title>`, title)
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func yPos(v, lo, hi float64) float64 {
	if hi == lo {
		return svgHeight / 2
	}
	return svgHeight - svgPad - (v-lo)/(hi-lo)*(svgHeight-2*svgPad)
}
