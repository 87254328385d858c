package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}

	simul, ok := c.Get("simul")
	if !ok {
		t.Fatal("builtin simul scenario missing")
	}
	lanes, err := simul.Lanes()
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 3 {
		t.Fatalf("simul lanes = %d, want 3", len(lanes))
	}
	if len(lanes[0].Units) != 5 {
		t.Errorf("moves = %d, want 5", len(lanes[0].Units))
	}
	if got := lanes[0].Units[0].Total(); got != 1100*time.Millisecond {
		t.Errorf("unit total = %v, want 1.1s", got)
	}

	api, ok := c.Get("api-calls")
	if !ok {
		t.Fatal("builtin api-calls scenario missing")
	}
	lanes, err = api.Lanes()
	if err != nil {
		t.Fatal(err)
	}
	if len(lanes) != 4 {
		t.Fatalf("api-calls lanes = %d, want 4", len(lanes))
	}
	line, _ := lanes[0].Units[0].StartLine()
	if line != "foursquare call started" {
		t.Errorf("StartLine() = %q", line)
	}
	if api.Source != SourceBuiltin {
		t.Errorf("Source = %s, want builtin", api.Source)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "name: x\nactors: [a, b]\nmoves: 2\npre_delay: 10ms\n", false},
		{"seconds delay", "name: x\nactors: [a]\npost_delay: \"0.5\"\n", false},
		{"missing name", "actors: [a]\n", true},
		{"blank actor", "name: x\nactors: [\"\"]\n", true},
		{"negative delay", "name: x\nactors: [a]\npre_delay: -1s\n", true},
		{"bad yaml", "name: [x\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_NegativeDelayIsDurationError(t *testing.T) {
	_, err := Parse([]byte("name: x\nactors: [a]\npre_delay: -1s\n"))
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Errorf("error = %v, want invalid duration", err)
	}
}

func TestParse_ZeroMovesRejected(t *testing.T) {
	if _, err := Parse([]byte("name: x\nactors: [a]\nmoves: 0\n")); err == nil {
		t.Error("explicit moves: 0 should be rejected")
	}

	def, err := Parse([]byte("name: x\nactors: [a]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if def.Moves != nil {
		t.Errorf("Moves = %d, want unset", *def.Moves)
	}
	if got := def.WithDefaults(Defaults{Moves: 4}).MoveCount(); got != 4 {
		t.Errorf("MoveCount() = %d, want 4 from defaults", got)
	}
}

func TestWithDefaults(t *testing.T) {
	def := Definition{Name: "x", Actors: []string{"a"}, PostDelay: "5ms"}
	got := def.WithDefaults(Defaults{Counterpart: "BOB", Moves: 3, PreDelay: "1ms", PostDelay: "9ms"})

	if got.Counterpart != "BOB" || got.MoveCount() != 3 || got.PreDelay != "1ms" {
		t.Errorf("WithDefaults() = %+v", got)
	}
	if got.PostDelay != "5ms" {
		t.Errorf("PostDelay = %q, want explicit value kept", got.PostDelay)
	}

	lanes, err := got.Lanes()
	if err != nil {
		t.Fatal(err)
	}
	line, _ := lanes[0].Units[2].CounterLine()
	if line != "BOB is making move 3 against A" {
		t.Errorf("CounterLine() = %q", line)
	}
}

func TestCatalog_LoadDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	content := "name: simul\nactors: [kasparov]\nmoves: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "simul.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadDir(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("LoadDir(missing) = %v, want nil", err)
	}

	e, _ := c.Get("simul")
	if e.Source != SourceFile || len(e.Actors) != 1 || e.Actors[0] != "kasparov" {
		t.Errorf("simul = %+v, want file override", e)
	}

	if err := c.Add(Definition{Name: "inline", Actors: []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, e := range c.List() {
		names = append(names, e.Name)
	}
	want := []string{"api-calls", "inline", "simul"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
