package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermix/app"
	"github.com/kilianp07/powermix/config"
	"github.com/kilianp07/powermix/pkg/export"
)

type runOptions struct {
	days      int
	runs      int
	workers   int
	seed      uint64
	factories map[string]int
	equipment map[string]int
	heights   map[string]string
	format    string
	traceOut  string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate one energy mix over many sampled environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := o.apply(cmd, cfg); err != nil {
				return err
			}
			return o.run(cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.days, "days", 0, "simulated days per run")
	f.IntVar(&o.runs, "runs", 0, "number of Monte Carlo runs")
	f.IntVar(&o.workers, "workers", 0, "concurrent runs, 0 for GOMAXPROCS")
	f.Uint64Var(&o.seed, "seed", 0, "environment seed")
	f.StringToIntVar(&o.factories, "factory", nil, "required factories, id=count (replaces the config)")
	f.StringToIntVar(&o.equipment, "equipment", nil, "producers and batteries, id=count (replaces the config)")
	f.StringToStringVar(&o.heights, "height", nil, "battery heights, id=h or id=h1:h2")
	f.StringVar(&o.format, "format", "text", "output format: text or json")
	f.StringVar(&o.traceOut, "trace-out", "", "write the worst run trace to a .csv or .json file")
	return cmd
}

func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if changed(cmd, "days") {
		cfg.Simulation.Days = o.days
	}
	if changed(cmd, "runs") {
		cfg.Simulation.Runs = o.runs
	}
	if changed(cmd, "workers") {
		cfg.Simulation.Workers = o.workers
	}
	if changed(cmd, "seed") {
		cfg.Simulation.Seed = o.seed
	}
	if changed(cmd, "factory") {
		cfg.Factories = o.factories
	}
	if changed(cmd, "equipment") {
		cfg.EnergyMix.Equipment = o.equipment
	}
	if changed(cmd, "height") {
		hs, err := parseHeights(o.heights)
		if err != nil {
			return err
		}
		cfg.EnergyMix.Heights = hs
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}
	return nil
}

func (o *runOptions) run(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	ev, err := svc.Evaluate(ctx, svc.Configuration())
	if err != nil {
		return err
	}
	if o.traceOut != "" {
		if err := writeTrace(o.traceOut, ev); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if o.format == "json" {
		return export.WriteEvaluationJSON(out, export.EvaluationDoc{
			Configuration: export.NewConfigDoc(ev.Config),
			Cost:          ev.Cost,
			Demand:        ev.Demand,
			Capacity:      ev.Capacity,
			Statistics:    export.NewStatsDoc(ev.Stats, cfg.Optimizer.Percentile),
		})
	}
	printEvaluation(out, ev)
	return nil
}

func writeTrace(path string, ev *app.Evaluation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return export.WriteTraceJSON(f, ev.Worst, ev.Seasons...)
	default:
		return export.WriteTraceCSV(f, ev.Worst)
	}
}

func printEvaluation(w io.Writer, ev *app.Evaluation) {
	s := ev.Stats
	fmt.Fprintf(w, "configuration  %s\n", ev.Config)
	fmt.Fprintf(w, "cost           %.1f\n", ev.Cost)
	fmt.Fprintf(w, "demand         %.1f/h\n", ev.Demand)
	fmt.Fprintf(w, "capacity       %.1f\n", ev.Capacity)
	fmt.Fprintf(w, "runs           %d\n", s.Runs)
	fmt.Fprintf(w, "downtime mean  %.2f%%\n", 100*s.Mean)
	fmt.Fprintf(w, "downtime p95   %.2f%%\n", 100*s.P95())
	fmt.Fprintf(w, "downtime max   %.2f%% (run %d)\n", 100*s.WorstFraction, s.WorstRun)
	fmt.Fprintf(w, "mean surplus   %.1f\n", s.MeanSurplus)
}
