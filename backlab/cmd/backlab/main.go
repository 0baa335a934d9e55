package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/ezquant/backlab/backlab"
	"github.com/ezquant/backlab/backlab/artifact"
	"github.com/ezquant/backlab/backlab/client"
	"github.com/ezquant/backlab/backlab/form"
	"github.com/ezquant/backlab/backlab/notification"
	"github.com/ezquant/backlab/backlab/plot"
	"github.com/ezquant/backlab/backlab/plus/localkv"
	"github.com/ezquant/backlab/backlab/report"
	"github.com/ezquant/backlab/backlab/storage"
	"github.com/ezquant/backlab/backlab/tools/log"
)

const databasePath = "./user_data/db"

func main() {
	app := &cli.App{
		Name:     "backlab",
		HelpName: "backlab",
		Usage:    "Configure, run and review strategy backtests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "backtest service base URL",
				Value:   "http://localhost:8000",
			},
			&cli.StringFlag{
				Name:  "timeout",
				Usage: "per-request timeout, eg. 90s or 2m",
				Value: "2m",
			},
		},
		Commands: []*cli.Command{
			{
				Name:     "run",
				HelpName: "run",
				Usage:    "Compile a form file, run the backtest and export the results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "eg. ./user_data/form_momentum.yml",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "preset",
						Aliases: []string{"p"},
						Usage:   "strategy preset to apply first: mean_reversion, momentum or multifactor",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "directory for CSV, JSON and report exports",
						Value:   "./user_data/exports",
					},
					&cli.StringFlag{
						Name:  "telegram-token",
						Usage: "notify this bot when the run finishes",
					},
					&cli.Int64Flag{
						Name:  "telegram-chat",
						Usage: "chat id for --telegram-token",
					},
				},
				Action: runBacktest,
			},
			{
				Name:     "meta",
				HelpName: "meta",
				Usage:    "Show the selectable sectors and market-cap buckets",
				Action:   showMeta,
			},
			{
				Name:     "history",
				HelpName: "history",
				Usage:    "List recent backtest runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   10,
					},
				},
				Action: showHistory,
			},
			{
				Name:     "preset",
				HelpName: "preset",
				Usage:    "Save, load and list named form presets",
				Subcommands: []*cli.Command{
					{
						Name:  "save",
						Usage: "Store a form file under a name",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true},
							&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true},
						},
						Action: presetSave,
					},
					{
						Name:  "load",
						Usage: "Write a named preset back out as a form file",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true},
							&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true},
						},
						Action: presetLoad,
					},
					{
						Name:   "list",
						Usage:  "List stored preset names",
						Action: presetList,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("url"), client.WithTimeout(c.String("timeout")))
}

func runBacktest(c *cli.Context) error {
	state, err := form.Load(c.String("config"))
	if err != nil {
		return err
	}
	if preset := c.String("preset"); preset != "" {
		state.ApplyPreset(preset)
	}

	// Re-establish the horizon constraints before the snapshot is
	// taken; a form file may carry hold_days or hist_horizon beyond
	// its max_horizon.
	*state = form.Propagate(*state, form.FieldMaxHorizon)

	history, err := storage.FromFile(filepath.Join(databasePath, "history.db"))
	if err != nil {
		return err
	}

	options := []backlab.Option{
		backlab.WithHistory(history),
		backlab.WithSink(report.FileSink{Dir: c.String("output")}),
	}
	if token := c.String("telegram-token"); token != "" {
		notifier, err := notification.NewTelegram(token, c.Int64("telegram-chat"))
		if err != nil {
			return err
		}
		options = append(options, backlab.WithNotifier(notifier))
	}

	lab := backlab.NewLab(newClient(c), options...)

	resp, err := lab.Submit(c.Context, state.Snapshot())
	if err != nil {
		return err
	}

	lab.Summary()

	lab.SetCapturer(report.ChartEquity, plot.NewSeries("Equity Curve", resp.EquityCurve, "steelblue"))
	lab.SetCapturer(report.ChartDrawdown, plot.NewSeries("Drawdown", resp.DrawdownCurve, "firebrick"))
	lab.SetCapturer(report.ChartHistogram, plot.NewHistogram("Return Distribution", resp.Histogram, "seagreen"))

	return export(lab, c.String("output"))
}

// export writes every per-section CSV, the JSON snapshot and the
// report document into the output directory.
func export(lab *backlab.Lab, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	sections := []string{
		artifact.SectionEquity,
		artifact.SectionDrawdown,
		artifact.SectionPrice,
		artifact.SectionSignals,
		artifact.SectionTrades,
		artifact.SectionMetrics,
		artifact.SectionHistogram,
		artifact.SectionStats,
	}

	bar := progressbar.Default(int64(len(sections)+2), "exporting")
	for _, section := range sections {
		text, err := lab.ExportCSV(section)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, section+".csv")
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := bar.Add(1); err != nil {
			log.Warnf("update progressbar fail: %v", err)
		}
	}

	snapshot, err := lab.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "response.json"), []byte(snapshot), 0644); err != nil {
		return fmt.Errorf("write response snapshot: %w", err)
	}
	if err := bar.Add(1); err != nil {
		log.Warnf("update progressbar fail: %v", err)
	}

	path, err := lab.ExportReport()
	if err != nil {
		return err
	}
	if err := bar.Add(1); err != nil {
		log.Warnf("update progressbar fail: %v", err)
	}

	log.Infof("report written to %s", path)
	return nil
}

func showMeta(c *cli.Context) error {
	meta, err := newClient(c).UniverseMeta(c.Context)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Bucket", "Min", "Max"})
	for _, bucket := range meta.McapBuckets {
		table.Append([]string{bucket.Label,
			fmt.Sprintf("%.0f", bucket.Min), fmt.Sprintf("%.0f", bucket.Max)})
	}
	table.Render()

	fmt.Println("Sectors:")
	for _, sector := range meta.Sectors {
		fmt.Printf("  %s\n", sector)
	}
	return nil
}

func showHistory(c *cli.Context) error {
	history, err := storage.FromFile(filepath.Join(databasePath, "history.db"))
	if err != nil {
		return err
	}

	runs, err := history.Recent(c.Int("limit"))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Strategy", "Period", "Universe", "Trades", "Sharpe", "Max DD"})
	for _, run := range runs {
		table.Append([]string{
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Strategy,
			run.Start + " to " + run.End,
			fmt.Sprintf("%d", run.UniverseSize),
			fmt.Sprintf("%d", run.TradesCount),
			fmt.Sprintf("%.2f", run.Sharpe),
			fmt.Sprintf("%.2f", run.MaxDrawdown),
		})
	}
	table.Render()
	return nil
}

func openKV() (*localkv.LocalKV, error) {
	path := databasePath
	return localkv.New(&path)
}

func presetSave(c *cli.Context) error {
	state, err := form.Load(c.String("config"))
	if err != nil {
		return err
	}

	kv, err := openKV()
	if err != nil {
		return err
	}
	defer kv.Close()

	return form.SavePreset(kv, c.String("name"), state)
}

func presetLoad(c *cli.Context) error {
	kv, err := openKV()
	if err != nil {
		return err
	}
	defer kv.Close()

	state, err := form.LoadPreset(kv, c.String("name"))
	if err != nil {
		return err
	}

	data, err := form.Encode(state)
	if err != nil {
		return err
	}
	return os.WriteFile(c.String("output"), data, 0644)
}

func presetList(c *cli.Context) error {
	kv, err := openKV()
	if err != nil {
		return err
	}
	defer kv.Close()

	keys, err := kv.Keys(form.PresetPattern)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(form.PresetName(key))
	}
	return nil
}
