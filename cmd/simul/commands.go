package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hochfrequenz/simul/internal/config"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/observer"
	"github.com/hochfrequenz/simul/internal/runner"
	"github.com/hochfrequenz/simul/internal/sink"
	"github.com/spf13/cobra"
)

var (
	runOpts     batchOptions
	runTimeout  time.Duration
	runRecord   bool
	runNotify   bool
	compareOpts batchOptions
	compareAll  bool
	compareLog  string
	configForce bool
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run [NAMES...]",
		Short: "Play a batch, one lane per name",
		Long: `Play a batch of timed units and print the total time taken.

With NAMES an ad-hoc game is played against each name; otherwise the
scenario from --scenario, --file or the config is used.`,
		RunE: runRun,
	}
	runOpts.register(runCmd)
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "cancel the batch after this long (0 = no limit)")
	runCmd.Flags().BoolVar(&runRecord, "record", false, "store the run in the history database")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "send a desktop notification when the batch finishes")
	rootCmd.AddCommand(runCmd)

	// compare command
	compareCmd := &cobra.Command{
		Use:   "compare [NAMES...]",
		Short: "Play the same batch sequentially and concurrently and report the speedup",
		RunE:  runCompare,
	}
	compareOpts.register(compareCmd)
	compareCmd.Flags().BoolVar(&compareAll, "all", false, "also play the parallel strategy")
	compareCmd.Flags().StringVar(&compareLog, "log", "", "also write played lines to this file")
	rootCmd.AddCommand(compareCmd)

	// scenarios command
	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List available scenarios",
		RunE:  runScenarios,
	}
	rootCmd.AddCommand(scenariosCmd)

	// config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE:  runConfigInit,
	}
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	def, err := runOpts.definition(cmd, cfg, catalog, args)
	if err != nil {
		return err
	}
	batchLanes, err := lanes(def)
	if err != nil {
		return err
	}
	strategy, err := runOpts.strategy(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	out := runOpts.sink(cmd, cfg)
	r := runner.New(runner.Config{
		Sink:        out,
		MaxParallel: runOpts.parallelLimit(cmd, cfg),
		Debug:       cfg.General.Debug,
	})

	report, runErr := r.Execute(ctx, runner.Batch{
		Scenario: def.Name,
		Strategy: strategy,
		Lanes:    batchLanes,
	})

	if err := out.Emit(report.Summary()); err != nil {
		return err
	}
	if runRecord || cfg.History.Enabled {
		saveReport(cfg, report)
	}
	notifyRun(cfg, report, runNotify)

	if errors.Is(runErr, context.DeadlineExceeded) {
		return fmt.Errorf("batch cancelled after %s: %w", runTimeout, runErr)
	}
	return runErr
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	def, err := compareOpts.definition(cmd, cfg, catalog, args)
	if err != nil {
		return err
	}
	batchLanes, err := lanes(def)
	if err != nil {
		return err
	}

	strategies := []domain.Strategy{domain.StrategySequential, domain.StrategyConcurrent}
	if compareAll {
		strategies = append(strategies, domain.StrategyParallel)
	}

	out := compareOpts.sink(cmd, cfg)
	if compareLog != "" {
		f, err := os.Create(compareLog)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
		out = sink.NewMulti(out, sink.NewWriterSink(f))
	}

	obs := observer.New()
	metrics := make(map[domain.Strategy]observer.Metrics)

	for _, strategy := range strategies {
		if err := out.Emit(fmt.Sprintf("== %s ==", strategy)); err != nil {
			return err
		}

		units := observer.New()
		r := runner.New(runner.Config{
			Sink:        out,
			Recorder:    units,
			MaxParallel: compareOpts.parallelLimit(cmd, cfg),
			Debug:       cfg.General.Debug,
		})
		report, err := r.Execute(cmd.Context(), runner.Batch{
			Scenario: def.Name,
			Strategy: strategy,
			Lanes:    batchLanes,
		})
		obs.RecordRun(report)
		metrics[strategy] = units.GetMetrics()
		if err := out.Emit(report.Summary()); err != nil {
			return err
		}
		if cfg.History.Enabled {
			saveReport(cfg, report)
		}
		if err != nil {
			return err
		}
	}

	writeComparison(cmd.OutOrStdout(), obs.Reports(), metrics)
	return nil
}

// writeComparison prints elapsed time, speedup over the first report and
// per-unit timings for every report
func writeComparison(out io.Writer, reports []domain.RunReport, metrics map[domain.Strategy]observer.Metrics) {
	if len(reports) == 0 {
		return
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tELAPSED\tSPEEDUP\tUNITS\tAVG UNIT\tMAX UNIT")
	for _, rep := range reports {
		m := metrics[rep.Strategy]
		fmt.Fprintf(w, "%s\t%.2fs\t%.2fx\t%d\t%.2fs\t%.2fs\n",
			rep.Strategy, rep.Seconds(), observer.Speedup(reports[0], rep),
			m.TotalCompleted, m.AvgDuration.Seconds(), m.MaxDuration.Seconds())
	}
	w.Flush()
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tACTORS\tMOVES\tDESCRIPTION")
	for _, e := range catalog.List() {
		def := e.Definition.WithDefaults(cfg.General.Defaults())
		actors := strings.Join(def.Actors, ",")
		if def.Repeat > 1 {
			actors = fmt.Sprintf("%s x%d", actors, def.Repeat)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", def.Name, e.Source, actors, def.MoveCount(), def.Description)
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
