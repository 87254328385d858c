package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/reportstore"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyScenario string
	historyMode     string
	historyStats    bool
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history [ID]",
		Short: "List recorded runs, or show one run by ID or ID prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyScenario, "scenario", "", "filter by scenario")
	historyCmd.Flags().StringVar(&historyMode, "mode", "", "filter by strategy")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show per-strategy averages instead of runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := reportstore.ListOptions{Scenario: historyScenario, Limit: historyLimit}
	if historyMode != "" {
		strategy, err := domain.ParseStrategy(historyMode)
		if err != nil {
			return err
		}
		opts.Strategy = strategy
	}

	store, err := reportstore.New(cfg.History.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(cmd.OutOrStdout(), store, args[0])
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	if historyStats {
		stats, err := store.Stats(historyScenario)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "MODE\tRUNS\tAVG\tBEST")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.2fs\n",
				s.Strategy, humanize.Comma(int64(s.Runs)), s.AvgElapsed.Seconds(), s.MinElapsed.Seconds())
		}
		return w.Flush()
	}

	runs, err := store.ListRuns(opts)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	fmt.Fprintln(w, "ID\tSCENARIO\tMODE\tUNITS\tELAPSED\tWHEN\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%s\t%s\n",
			shortID(r.ID), r.Scenario, r.Strategy, r.Units, r.Seconds(), humanize.Time(r.StartedAt), r.Err)
	}
	return w.Flush()
}

func showRun(out io.Writer, store *reportstore.Store, id string) error {
	r, err := store.GetRun(id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no run %s", id)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", r.ID)
	fmt.Fprintf(w, "Scenario:\t%s\n", r.Scenario)
	fmt.Fprintf(w, "Mode:\t%s\n", r.Strategy)
	fmt.Fprintf(w, "Units:\t%d\n", r.Units)
	fmt.Fprintf(w, "Started:\t%s (%s)\n", r.StartedAt.Format(time.RFC3339), humanize.Time(r.StartedAt))
	fmt.Fprintf(w, "Elapsed:\t%s\n", r.Summary())
	if !r.Succeeded() {
		fmt.Fprintf(w, "Error:\t%s\n", r.Err)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
