package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestUnit_Lines(t *testing.T) {
	u := Unit{Name: "mortal 1", Index: 3, PreDelay: time.Second, PostDelay: 100 * time.Millisecond}

	start, err := u.StartLine()
	if err != nil {
		t.Fatal(err)
	}
	if want := "MORTAL 1 is making move 3 against LARRY"; start != want {
		t.Errorf("StartLine() = %q, want %q", start, want)
	}

	counter, err := u.CounterLine()
	if err != nil {
		t.Fatal(err)
	}
	if want := "LARRY is making move 3 against MORTAL 1"; counter != want {
		t.Errorf("CounterLine() = %q, want %q", counter, want)
	}

	if u.Total() != 1100*time.Millisecond {
		t.Errorf("Total() = %v, want 1.1s", u.Total())
	}
}

func TestUnit_CustomTemplates(t *testing.T) {
	u := Unit{
		Name:            "foursquare",
		Index:           1,
		StartTemplate:   "{{.Actor}} call started",
		CounterTemplate: "{{.Actor}} call finished",
	}

	start, _ := u.StartLine()
	if start != "foursquare call started" {
		t.Errorf("StartLine() = %q, want %q", start, "foursquare call started")
	}
	counter, _ := u.CounterLine()
	if counter != "foursquare call finished" {
		t.Errorf("CounterLine() = %q, want %q", counter, "foursquare call finished")
	}
}

func TestUnit_Validate(t *testing.T) {
	tests := []struct {
		name         string
		unit         Unit
		wantDuration bool
		wantUnit     bool
	}{
		{"valid", Unit{Name: "a", Index: 1, PreDelay: time.Second}, false, false},
		{"zero delays", Unit{Name: "a", Index: 1}, false, false},
		{"missing name", Unit{Index: 1}, false, true},
		{"blank name", Unit{Name: "   ", Index: 1}, false, true},
		{"negative index", Unit{Name: "a", Index: -1}, false, true},
		{"negative pre", Unit{Name: "a", Index: 1, PreDelay: -time.Second}, true, false},
		{"negative post", Unit{Name: "a", Index: 1, PostDelay: -time.Millisecond}, true, false},
		{"broken template", Unit{Name: "a", Index: 1, StartTemplate: "{{.Actor"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.unit.Validate()
			if got := errors.Is(err, ErrInvalidDuration); got != tt.wantDuration {
				t.Errorf("errors.Is(err, ErrInvalidDuration) = %v, want %v (err=%v)", got, tt.wantDuration, err)
			}
			if got := errors.Is(err, ErrInvalidUnit); got != tt.wantUnit {
				t.Errorf("errors.Is(err, ErrInvalidUnit) = %v, want %v (err=%v)", got, tt.wantUnit, err)
			}
		})
	}
}

func TestValidateBatch_ReportsPosition(t *testing.T) {
	units := []Unit{
		{Name: "a", Index: 1},
		{Name: "", Index: 2},
	}

	err := ValidateBatch(units)
	var unitErr *InvalidUnitError
	if !errors.As(err, &unitErr) {
		t.Fatalf("ValidateBatch() error = %v, want *InvalidUnitError", err)
	}
	if unitErr.Position != 1 {
		t.Errorf("Position = %d, want 1", unitErr.Position)
	}
}

func TestNewDelay(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
		wantErr bool
	}{
		{1, time.Second, false},
		{0.1, 100 * time.Millisecond, false},
		{0, 0, false},
		{-1, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{1e11, 0, true},
		{maxDelaySeconds, 0, true},
		{9e9, 9e9 * time.Second, false},
	}

	for _, tt := range tests {
		got, err := NewDelay("pre_delay", tt.seconds)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewDelay(%v) error = %v, wantErr %v", tt.seconds, err, tt.wantErr)
			continue
		}
		if err != nil {
			var durErr *InvalidDurationError
			if !errors.As(err, &durErr) {
				t.Errorf("NewDelay(%v) error type = %T, want *InvalidDurationError", tt.seconds, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("NewDelay(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestParseDelay(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1s", time.Second, false},
		{"100ms", 100 * time.Millisecond, false},
		{"1.5", 1500 * time.Millisecond, false},
		{"", 0, false},
		{"-2s", 0, true},
		{"-0.5", 0, true},
		{"NaN", 0, true},
		{"soon", 0, true},
		{"9999999999", 0, true},
		{"1e11", 0, true},
		{"86400", 24 * time.Hour, false},
	}

	for _, tt := range tests {
		got, err := ParseDelay("post_delay", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDelay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDelay(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies {
		got, err := ParseStrategy(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStrategy("async"); err == nil {
		t.Error("ParseStrategy(async) should error")
	}
}
