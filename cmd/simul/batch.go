package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hochfrequenz/simul/internal/config"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/notify"
	"github.com/hochfrequenz/simul/internal/reportstore"
	"github.com/hochfrequenz/simul/internal/scenario"
	"github.com/hochfrequenz/simul/internal/sink"
	"github.com/spf13/cobra"
)

// batchOptions are the flags shared by every command that plays a batch
type batchOptions struct {
	scenario    string
	file        string
	counterpart string
	moves       int
	pre         string
	post        string
	mode        string
	maxParallel int
	timestamps  bool
}

func (o *batchOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.scenario, "scenario", "s", "", "named scenario to play")
	f.StringVarP(&o.file, "file", "f", "", "YAML scenario file to play")
	f.StringVar(&o.counterpart, "counterpart", "", "name answering every move")
	f.IntVar(&o.moves, "moves", 0, "moves per lane")
	f.StringVar(&o.pre, "pre", "", "delay before each start line (e.g. 1s, 0.5)")
	f.StringVar(&o.post, "post", "", "delay before each counter line")
	f.StringVar(&o.mode, "mode", "", "execution strategy: sequential, concurrent or parallel")
	f.IntVar(&o.maxParallel, "max-parallel", 0, "goroutine limit for the parallel strategy")
	f.BoolVar(&o.timestamps, "timestamps", false, "prefix output lines with the wall-clock time")
}

// definition resolves the scenario to play: a file, a catalogued scenario or
// an ad-hoc game against the named actors, with flag overrides applied.
func (o *batchOptions) definition(cmd *cobra.Command, cfg *config.Config, catalog *scenario.Catalog, names []string) (scenario.Definition, error) {
	var def scenario.Definition
	flags := cmd.Flags()

	switch {
	case o.file != "":
		loaded, err := scenario.LoadFile(o.file)
		if err != nil {
			return def, err
		}
		def = *loaded
	case len(names) > 0 && !flags.Changed("scenario"):
		def = scenario.Definition{Name: "adhoc", Epilogue: domain.DefaultEpilogue}
	default:
		name := o.scenario
		if name == "" {
			name = cfg.General.Scenario
		}
		entry, ok := catalog.Get(name)
		if !ok {
			return def, fmt.Errorf("unknown scenario %q", name)
		}
		def = entry.Definition
	}

	if len(names) > 0 {
		def.Actors = names
	}
	if flags.Changed("counterpart") {
		def.Counterpart = o.counterpart
	}
	if flags.Changed("moves") {
		if o.moves < 1 {
			return def, fmt.Errorf("moves must be at least 1, got %d", o.moves)
		}
		moves := o.moves
		def.Moves = &moves
	}
	if flags.Changed("pre") {
		if _, err := domain.ParseDelay("pre", o.pre); err != nil {
			return def, err
		}
		def.PreDelay = o.pre
	}
	if flags.Changed("post") {
		if _, err := domain.ParseDelay("post", o.post); err != nil {
			return def, err
		}
		def.PostDelay = o.post
	}

	return def.WithDefaults(cfg.General.Defaults()), nil
}

// lanes expands def and validates every unit, so no output is produced for
// a batch that would fail validation.
func lanes(def scenario.Definition) ([]domain.Lane, error) {
	ls, err := def.Lanes()
	if err != nil {
		return nil, err
	}
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return ls, nil
}

func (o *batchOptions) strategy(cmd *cobra.Command, cfg *config.Config) (domain.Strategy, error) {
	if cmd.Flags().Changed("mode") {
		return domain.ParseStrategy(o.mode)
	}
	return cfg.General.Strategy()
}

func (o *batchOptions) parallelLimit(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("max-parallel") {
		return o.maxParallel
	}
	return cfg.General.MaxParallel
}

func (o *batchOptions) sink(cmd *cobra.Command, cfg *config.Config) sink.Sink {
	var out sink.Sink = sink.NewWriterSink(cmd.OutOrStdout())
	if o.timestamps || cfg.General.Timestamps {
		out = sink.WithTimestamps(out)
	}
	return out
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithLocalFallback(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.General.Debug = true
	}
	return cfg, nil
}

// loadCatalog merges built-in, directory and inline config scenarios
func loadCatalog(cfg *config.Config) (*scenario.Catalog, error) {
	catalog, err := scenario.Builtin()
	if err != nil {
		return nil, err
	}
	if err := catalog.LoadDir(cfg.General.ScenarioDir); err != nil {
		return nil, err
	}
	if err := catalog.Add(cfg.Scenarios...); err != nil {
		return nil, err
	}
	return catalog, nil
}

func saveReport(cfg *config.Config, report domain.RunReport) {
	store, err := reportstore.New(cfg.History.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open history: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record run: %v\n", err)
	}
}

// newNotifier returns the notifiers enabled by config or flag
func newNotifier(cfg *config.Config, force bool) notify.Notifier {
	var notifiers []notify.Notifier
	if force || cfg.Notifications.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}
	if len(notifiers) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(notifiers...)
}

func notifyRun(cfg *config.Config, report domain.RunReport, force bool) {
	if err := newNotifier(cfg, force).Send(notify.FromReport(report)); err != nil && cfg.General.Debug {
		log.Printf("[notify] %v", err)
	}
}
