package main

import (
	"fmt"
	"log"

	"github.com/hochfrequenz/simul/internal/config"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/runner"
	"github.com/hochfrequenz/simul/internal/scenario"
	"github.com/hochfrequenz/simul/internal/sink"
	"github.com/spf13/cobra"
)

var watchOpts batchOptions

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Play a scenario file and play it again whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchOpts.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := args[0]
	watchOpts.file = path

	strategy, err := watchOpts.strategy(cmd, cfg)
	if err != nil {
		return err
	}

	changes := make(chan string, 1)
	watcher, err := scenario.NewWatcher(func(p string) {
		select {
		case changes <- p:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.AddFile(path); err != nil {
		watcher.Stop()
		return fmt.Errorf("watching %s: %w", path, err)
	}

	ctx := cmd.Context()
	watcher.Start(ctx)
	defer watcher.Stop()

	out := watchOpts.sink(cmd, cfg)
	r := runner.New(runner.Config{
		Sink:        out,
		MaxParallel: watchOpts.parallelLimit(cmd, cfg),
		Debug:       cfg.General.Debug,
	})

	play := func() {
		if err := playFile(cmd, cfg, r, out, strategy); err != nil {
			log.Printf("[watch] %v", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", path)
	}

	play()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			play()
		}
	}
}

// playFile reloads the watched scenario file and plays it once
func playFile(cmd *cobra.Command, cfg *config.Config, r *runner.Runner, out sink.Sink, strategy domain.Strategy) error {
	def, err := watchOpts.definition(cmd, cfg, nil, nil)
	if err != nil {
		return err
	}
	batchLanes, err := lanes(def)
	if err != nil {
		return err
	}

	report, err := r.Execute(cmd.Context(), runner.Batch{
		Scenario: def.Name,
		Strategy: strategy,
		Lanes:    batchLanes,
	})
	if emitErr := out.Emit(report.Summary()); emitErr != nil {
		return emitErr
	}
	if cfg.History.Enabled {
		saveReport(cfg, report)
	}
	notifyRun(cfg, report, false)
	return err
}
