package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/ezquant/backlab/backlab/artifact"
	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/model"
)

// Input carries everything the assembler composes. Response must be
// set; every other part is optional and degrades to an omitted or
// placeholder subsection.
type Input struct {
	Response *model.BacktestResponse
	Request  *model.BacktestRequest
	Snapshot form.Snapshot
	Images   map[ChartRole]Image
}

// Document is the assembled self-contained report.
type Document struct {
	Filename string
	HTML     []byte
}

var chartTitles = map[ChartRole]string{
	ChartEquity:    "Equity Curve",
	ChartDrawdown:  "Drawdown",
	ChartSignals:   "Signals",
	ChartHistogram: "Return Distribution",
}

var sectionTitles = map[string]string{
	artifact.SectionEquity:    "Equity Curve",
	artifact.SectionDrawdown:  "Drawdown Curve",
	artifact.SectionPrice:     "Price Series",
	artifact.SectionSignals:   "Signals",
	artifact.SectionTrades:    "Trades",
	artifact.SectionMetrics:   "Metrics",
	artifact.SectionHistogram: "Return Histogram",
	artifact.SectionStats:     "Indicator Statistics",
}

type chartView struct {
	Title string
	Src   template.URL
}

type sectionView struct {
	Title string
	CSV   string
	Empty bool
}

type metricView struct {
	Name  string
	Value string
}

type reportView struct {
	GeneratedAt  string
	Selection    []artifact.SelectionRow
	Metrics      []metricView
	Charts       []chartView
	Sections     []sectionView
	RequestJSON  string
	ResponseJSON string
}

// Assemble composes the report document. Missing images and empty
// sections never abort assembly; the only hard precondition, an
// existing response, is enforced by the caller.
func Assemble(in Input) (*Document, error) {
	now := time.Now()

	view := reportView{
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
		Selection:   artifact.SelectionRows(in.Snapshot),
	}

	for _, row := range artifact.MetricRows(in.Response).Rows {
		view.Metrics = append(view.Metrics, metricView{Name: row[0], Value: row[1]})
	}

	for _, role := range ChartRoles {
		img, ok := in.Images[role]
		if !ok {
			continue
		}
		view.Charts = append(view.Charts, chartView{
			Title: chartTitles[role],
			Src:   template.URL(img.DataURI()),
		})
	}

	for _, table := range artifact.ResponseTables(in.Response) {
		section := sectionView{Title: sectionTitles[table.Name], Empty: table.Empty()}
		if !section.Empty {
			csvText, err := artifact.EncodeCSV(table)
			if err != nil {
				return nil, fmt.Errorf("encode %s section: %w", table.Name, err)
			}
			section.CSV = csvText
		}
		view.Sections = append(view.Sections, section)
	}

	if in.Request != nil {
		reqJSON, err := artifact.EncodeJSON(in.Request)
		if err != nil {
			return nil, fmt.Errorf("serialize request: %w", err)
		}
		view.RequestJSON = reqJSON
	}
	respJSON, err := artifact.EncodeJSON(in.Response)
	if err != nil {
		return nil, fmt.Errorf("serialize response: %w", err)
	}
	view.ResponseJSON = respJSON

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return &Document{
		Filename: fmt.Sprintf("backlab_report_%s.html", now.Format("20060102_150405")),
		HTML:     buf.Bytes(),
	}, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Backtest Report</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1, h2 { border-bottom: 1px solid #ddd; padding-bottom: 0.3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
img { max-width: 100%; margin: 0.5rem 0; }
pre { background: #f6f6f6; padding: 0.8rem; overflow-x: auto; }
details { margin: 0.5rem 0; }
.empty { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>Backtest Report</h1>
<p>Generated at {{.GeneratedAt}}</p>

<h2>Parameters</h2>
<table>
<tr><th>Section</th><th>Setting</th><th>Value</th></tr>
{{range .Selection}}<tr><td>{{.Section}}</td><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</table>

{{if .Metrics}}<h2>Metrics</h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
{{range .Metrics}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}

{{if .Charts}}<h2>Charts</h2>
{{range .Charts}}<h3>{{.Title}}</h3>
<img src="{{.Src}}" alt="{{.Title}}">
{{end}}{{end}}

<h2>Data</h2>
{{range .Sections}}<details>
<summary>{{.Title}}</summary>
{{if .Empty}}<p class="empty">No data available.</p>{{else}}<pre>{{.CSV}}</pre>{{end}}
</details>
{{end}}

{{if .RequestJSON}}<h2>Request Payload</h2>
<details><summary>JSON</summary><pre>{{.RequestJSON}}</pre></details>
{{end}}
<h2>Response Payload</h2>
<details><summary>JSON</summary><pre>{{.ResponseJSON}}</pre></details>
</body>
</html>
`))
