package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermix/config"
	"github.com/kilianp07/powermix/core/optimizer"
	"github.com/kilianp07/powermix/infra/logger"
	"github.com/kilianp07/powermix/pkg/export"
)

type optimizeOptions struct {
	iterations     int
	walkers        int
	seed           uint64
	threshold      float64
	runs           int
	days           int
	requireSurplus bool
	factories      map[string]int
	top            int
	format         string
	out            string
}

func newOptimizeCmd(root *rootOptions) *cobra.Command {
	o := &optimizeOptions{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search the cheapest energy mix powering the required factories",
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
	f.IntVar(&o.iterations, "iterations", 0, "search iterations")
	f.IntVar(&o.walkers, "walkers", 0, "independent walkers")
	f.Uint64Var(&o.seed, "seed", 0, "search and environment seed")
	f.Float64Var(&o.threshold, "threshold", 0, "maximum downtime at the percentile, e.g. 0.05")
	f.IntVar(&o.runs, "runs", 0, "Monte Carlo runs per evaluation")
	f.IntVar(&o.days, "days", 0, "simulated days per run")
	f.BoolVar(&o.requireSurplus, "require-surplus", false, "also require a non-negative mean energy surplus")
	f.StringToIntVar(&o.factories, "factory", nil, "required factories, id=count (replaces the config)")
	f.IntVar(&o.top, "top", 0, "number of ranked solutions to report")
	f.StringVar(&o.format, "format", "text", "output format: text or json")
	f.StringVar(&o.out, "out", "", "write the report to a .json or .csv file")
	return cmd
}

func (o *optimizeOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if changed(cmd, "iterations") {
		cfg.Optimizer.Iterations = o.iterations
	}
	if changed(cmd, "walkers") {
		cfg.Optimizer.Walkers = o.walkers
	}
	if changed(cmd, "seed") {
		cfg.Optimizer.Seed = o.seed
	}
	if changed(cmd, "threshold") {
		cfg.Optimizer.Threshold = o.threshold
	}
	if changed(cmd, "runs") {
		cfg.Simulation.Runs = o.runs
	}
	if changed(cmd, "days") {
		cfg.Simulation.Days = o.days
	}
	if changed(cmd, "require-surplus") {
		cfg.Optimizer.RequireSurplus = o.requireSurplus
	}
	if changed(cmd, "factory") {
		cfg.Factories = o.factories
	}
	if changed(cmd, "top") {
		cfg.Optimizer.Top = o.top
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}
	if len(cfg.Factories) == 0 {
		return fmt.Errorf("no factories to power: set factories in the config or use --factory")
	}
	return nil
}

func (o *optimizeOptions) run(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)

	go func() {
		if err := svc.ServeMetrics(ctx); err != nil {
			logger.New("main").Errorf("prom server: %v", err)
		}
	}()

	res, err := svc.Optimize(ctx)
	if res == nil {
		return err
	}
	if err != nil {
		// interrupted: report the best found so far
		logger.New("main").Warnf("optimization stopped early: %v", err)
	}
	top := cfg.Optimizer.Top
	if o.out != "" {
		if werr := writeResult(o.out, res, cfg.Optimizer.Percentile, top); werr != nil {
			return werr
		}
	}
	out := cmd.OutOrStdout()
	if o.format == "json" {
		if werr := export.WriteResultJSON(out, res, cfg.Optimizer.Percentile, top); werr != nil {
			return werr
		}
		return err
	}
	printResult(out, res, top)
	return err
}

func writeResult(path string, res *optimizer.Result, percentile float64, top int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return export.WriteRankingCSV(f, res, top)
	}
	return export.WriteResultJSON(f, res, percentile, top)
}

func printResult(w io.Writer, res *optimizer.Result, top int) {
	if !res.Feasible {
		fmt.Fprintf(w, "no feasible configuration found; closest: %s\n", res.Best)
	}
	fmt.Fprintf(w, "best        %s\n", res.Best)
	fmt.Fprintf(w, "cost        %.1f\n", res.Cost)
	fmt.Fprintf(w, "downtime    %.2f%%\n", 100*res.Downtime)
	fmt.Fprintf(w, "evaluations %d in %d iterations\n", res.Evaluations, res.Iterations)

	ranked := res.Ranked(top)
	if len(ranked) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOST\tDOWNTIME\tUNITS\tCONFIGURATION")
	for i, c := range ranked {
		fmt.Fprintf(tw, "%d\t%.1f\t%.2f%%\t%d\t%s\n", i+1, c.Cost, 100*c.Downtime, c.Units(), c.Config)
	}
	_ = tw.Flush()
}
