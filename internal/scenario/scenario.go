package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/hochfrequenz/simul/internal/domain"
	"gopkg.in/yaml.v3"
)

// Definition describes a batch: one lane per actor, each of Moves units
type Definition struct {
	Name            string   `yaml:"name" toml:"name"`
	Description     string   `yaml:"description" toml:"description"`
	Counterpart     string   `yaml:"counterpart" toml:"counterpart"`
	Actors          []string `yaml:"actors" toml:"actors"`
	Repeat          int      `yaml:"repeat" toml:"repeat"` // lanes per actor, default 1
	Moves           *int     `yaml:"moves,omitempty" toml:"moves,omitempty"` // nil inherits the default
	PreDelay        string   `yaml:"pre_delay" toml:"pre_delay"`
	PostDelay       string   `yaml:"post_delay" toml:"post_delay"`
	StartTemplate   string   `yaml:"start_template" toml:"start_template"`
	CounterTemplate string   `yaml:"counter_template" toml:"counter_template"`
	Epilogue        string   `yaml:"epilogue" toml:"epilogue"`
}

// Defaults fill fields a definition leaves empty
type Defaults struct {
	Counterpart string
	Moves       int
	PreDelay    string
	PostDelay   string
}

// Parse decodes a YAML scenario definition
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads and parses a YAML scenario file
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Validate checks the definition without applying defaults
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	for i, a := range d.Actors {
		if strings.TrimSpace(a) == "" {
			return &domain.InvalidUnitError{Position: i, Name: a, Reason: "actor name is required"}
		}
	}
	if d.Repeat < 0 {
		return fmt.Errorf("scenario %s: repeat must not be negative", d.Name)
	}
	if d.Moves != nil && *d.Moves < 1 {
		return fmt.Errorf("scenario %s: moves must be at least 1, got %d", d.Name, *d.Moves)
	}
	if _, err := domain.ParseDelay("pre_delay", d.PreDelay); err != nil {
		return err
	}
	if _, err := domain.ParseDelay("post_delay", d.PostDelay); err != nil {
		return err
	}
	return nil
}

// MoveCount returns the number of moves per lane, 0 when unset
func (d Definition) MoveCount() int {
	if d.Moves == nil {
		return 0
	}
	return *d.Moves
}

// WithDefaults returns a copy with empty fields filled from defaults
func (d Definition) WithDefaults(defaults Defaults) Definition {
	if d.Counterpart == "" {
		d.Counterpart = defaults.Counterpart
	}
	if d.Moves == nil {
		moves := defaults.Moves
		d.Moves = &moves
	}
	if d.PreDelay == "" {
		d.PreDelay = defaults.PreDelay
	}
	if d.PostDelay == "" {
		d.PostDelay = defaults.PostDelay
	}
	return d
}

// Lanes expands the definition into one game lane per actor and repetition
func (d Definition) Lanes() ([]domain.Lane, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	pre, _ := domain.ParseDelay("pre_delay", d.PreDelay)
	post, _ := domain.ParseDelay("post_delay", d.PostDelay)

	repeat := d.Repeat
	if repeat == 0 {
		repeat = 1
	}

	lanes := make([]domain.Lane, 0, len(d.Actors)*repeat)
	for _, actor := range d.Actors {
		for i := 0; i < repeat; i++ {
			lanes = append(lanes, domain.Game{
				Opponent:        actor,
				Counterpart:     d.Counterpart,
				Moves:           d.MoveCount(),
				PreDelay:        pre,
				PostDelay:       post,
				StartTemplate:   d.StartTemplate,
				CounterTemplate: d.CounterTemplate,
				Epilogue:        d.Epilogue,
			}.Lane())
		}
	}
	return lanes, nil
}
