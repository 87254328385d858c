package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/runner"
	"github.com/hochfrequenz/simul/tui"
	"github.com/spf13/cobra"
)

var tuiOpts batchOptions

func init() {
	tuiCmd := &cobra.Command{
		Use:   "tui [NAMES...]",
		Short: "Launch the live lane dashboard",
		RunE:  runTUI,
	}
	tuiOpts.register(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	def, err := tuiOpts.definition(cmd, cfg, catalog, args)
	if err != nil {
		return err
	}
	batchLanes, err := lanes(def)
	if err != nil {
		return err
	}
	strategy, err := tuiOpts.strategy(cmd, cfg)
	if err != nil {
		return err
	}
	maxParallel := tuiOpts.parallelLimit(cmd, cfg)
	ctx := cmd.Context()

	start := func(strategy domain.Strategy, events chan<- tea.Msg) {
		bridge := tui.NewBridge(events)
		r := runner.New(runner.Config{
			Sink:         bridge,
			Recorder:     bridge,
			MaxParallel:  maxParallel,
			OnLaneStatus: bridge.LaneStatus,
		})
		report, err := r.Execute(ctx, runner.Batch{
			Scenario: def.Name,
			Strategy: strategy,
			Lanes:    batchLanes,
		})
		if cfg.History.Enabled {
			saveReport(cfg, report)
		}
		bridge.Done(report, err)
	}

	model := tui.NewModel(tui.ModelConfig{
		Scenario:  def.Name,
		Lanes:     batchLanes,
		Strategy:  strategy,
		Start:     start,
		AutoStart: true,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
