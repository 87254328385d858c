package domain

import (
	"strings"
	"time"
)

// DefaultEpilogue closes a game once every move has been played
const DefaultEpilogue = "DONE GAME against {{.Actor}}"

// Lane is an ordered chain of units belonging to one actor.
// Units within a lane always run in order; strategies fan out lanes.
type Lane struct {
	Name     string
	Units    []Unit
	Epilogue string // optional template emitted after the last unit
}

// Total returns the sum of every delay in the lane
func (l Lane) Total() time.Duration {
	var d time.Duration
	for _, u := range l.Units {
		d += u.Total()
	}
	return d
}

// EpilogueLine renders the epilogue, returning "" when none is set
func (l Lane) EpilogueLine() (string, error) {
	if l.Epilogue == "" {
		return "", nil
	}
	return Render(l.Epilogue, MessageData{Actor: l.Name, Index: len(l.Units)})
}

// Validate checks every unit of the lane
func (l Lane) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return &InvalidUnitError{Position: -1, Name: l.Name, Reason: "lane name is required"}
	}
	if err := ValidateBatch(l.Units); err != nil {
		return err
	}
	if l.Epilogue != "" {
		if _, err := compile(l.Epilogue); err != nil {
			return &InvalidUnitError{Position: -1, Name: l.Name, Reason: err.Error()}
		}
	}
	return nil
}

// SingleLanes wraps every unit into its own lane so that units can be
// scheduled independently of each other
func SingleLanes(units []Unit) []Lane {
	lanes := make([]Lane, len(units))
	for i, u := range units {
		lanes[i] = Lane{Name: u.Name, Units: []Unit{u}}
	}
	return lanes
}

// Game is one board of a simul: an opponent plays Moves moves against the counterpart
type Game struct {
	Opponent        string
	Counterpart     string
	Moves           int
	PreDelay        time.Duration
	PostDelay       time.Duration
	StartTemplate   string
	CounterTemplate string
	Epilogue        string
}

// Lane expands the game into moves 1..Moves
func (g Game) Lane() Lane {
	units := make([]Unit, 0, g.Moves)
	for move := 1; move <= g.Moves; move++ {
		units = append(units, Unit{
			Name:            g.Opponent,
			Index:           move,
			Counterpart:     g.Counterpart,
			PreDelay:        g.PreDelay,
			PostDelay:       g.PostDelay,
			StartTemplate:   g.StartTemplate,
			CounterTemplate: g.CounterTemplate,
		})
	}
	return Lane{Name: g.Opponent, Units: units, Epilogue: g.Epilogue}
}
