//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// binaryPath returns the path to the built CLI binary
func binaryPath(t *testing.T) string {
	t.Helper()
	// Look for the binary in common locations
	paths := []string{
		"../simul",
		"./simul",
		filepath.Join(os.Getenv("GOPATH"), "bin", "simul"),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			abs, _ := filepath.Abs(p)
			return abs
		}
	}

	// Try to build it
	t.Log("Binary not found, building...")
	cmd := exec.Command("go", "build", "-o", "../simul", "../cmd/simul")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}

	abs, _ := filepath.Abs("../simul")
	return abs
}

// createTestConfig creates a temporary config file for testing
func createTestConfig(t *testing.T, dbPath string) string {
	t.Helper()
	configPath := TempConfigPath(t)

	config := `[general]
moves = 2
pre_delay = "20ms"
post_delay = "5ms"
mode = "concurrent"
scenario_dir = "` + filepath.Join(FixturesDir(t), "scenarios") + `"

[history]
enabled = false
database_path = "` + dbPath + `"

[[scenario]]
name = "inline"
description = "Defined in the config file"
actors = ["magnus"]
moves = 1
`

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	return configPath
}

// nonEmptyLines splits output into trimmed, non-empty lines
func nonEmptyLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// TestCLI_RunSequential tests that sequential mode finishes each lane before the next
func TestCLI_RunSequential(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "run", "--config", configPath, "--mode", "sequential", "carl", "fabi")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}

	want := []string{
		"CARL is making move 1 against LARRY",
		"LARRY is making move 1 against CARL",
		"CARL is making move 2 against LARRY",
		"LARRY is making move 2 against CARL",
		"DONE GAME against carl",
		"FABI is making move 1 against LARRY",
		"LARRY is making move 1 against FABI",
		"FABI is making move 2 against LARRY",
		"LARRY is making move 2 against FABI",
		"DONE GAME against fabi",
	}
	lines := nonEmptyLines(string(out))
	if len(lines) != len(want)+1 {
		t.Fatalf("Line count = %d, want %d:\n%s", len(lines), len(want)+1, out)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("Line %d = %q, want %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[len(lines)-1], "Total time taken: ") {
		t.Errorf("Last line = %q, want summary", lines[len(lines)-1])
	}
}

// TestCLI_RunFileConcurrent tests that concurrent lanes interleave
func TestCLI_RunFileConcurrent(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "run", "--config", configPath, "--file", ScenarioFixture(t, "rapid.yaml"))
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}

	// Every first move starts before any second move
	lines := nonEmptyLines(string(out))
	lastFirst, firstSecond := -1, len(lines)
	for i, l := range lines {
		if strings.Contains(l, "is making move 1 against LARRY") && i > lastFirst {
			lastFirst = i
		}
		if strings.Contains(l, "is making move 2 against LARRY") && i < firstSecond {
			firstSecond = i
		}
	}
	if lastFirst < 0 || lastFirst > firstSecond {
		t.Errorf("Moves did not interleave:\n%s", out)
	}
}

// TestCLI_RunCallsScenario tests single-delay calls: all starts precede all finishes
func TestCLI_RunCallsScenario(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "run", "--config", configPath, "--scenario", "calls")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}

	lines := nonEmptyLines(string(out))
	if len(lines) != 9 {
		t.Fatalf("Line count = %d, want 9:\n%s", len(lines), out)
	}
	for i := 0; i < 4; i++ {
		if lines[i] != "foursquare call started" {
			t.Errorf("Line %d = %q, want started", i, lines[i])
		}
		if lines[i+4] != "foursquare call finished" {
			t.Errorf("Line %d = %q, want finished", i+4, lines[i+4])
		}
	}
}

// TestCLI_InvalidDuration tests that a negative delay fails before any output
func TestCLI_InvalidDuration(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "run", "--config", configPath, "--pre=-1s", "carl")
	var stdout strings.Builder
	cmd.Stdout = &stdout
	err := cmd.Run()

	if err == nil {
		t.Fatal("Expected error for negative delay")
	}
	if exitErr, ok := err.(*exec.ExitError); !ok || exitErr.ExitCode() != 1 {
		t.Errorf("Exit error = %v, want exit code 1", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no output, got: %s", stdout.String())
	}
}

// TestCLI_RecordAndHistory tests that recorded runs show up in history
func TestCLI_RecordAndHistory(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	for _, mode := range []string{"sequential", "concurrent"} {
		cmd := exec.Command(binary, "run", "--config", configPath, "--mode", mode, "--record", "carl")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("run %s failed: %v\n%s", mode, err, out)
		}
	}

	cmd := exec.Command(binary, "history", "--config", configPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("history command failed: %v\n%s", err, out)
	}
	output := string(out)
	for _, want := range []string{"adhoc", "sequential", "concurrent"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in history, got: %s", want, output)
		}
	}

	cmd = exec.Command(binary, "history", "--config", configPath, "--stats")
	out, err = cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("history --stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "RUNS") {
		t.Errorf("Expected stats header, got: %s", out)
	}
}

// TestCLI_Compare tests the speedup table
func TestCLI_Compare(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "compare", "--config", configPath, "carl", "fabi", "hikaru")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("compare command failed: %v\n%s", err, out)
	}

	output := string(out)
	for _, want := range []string{"== sequential ==", "== concurrent ==", "SPEEDUP", "1.00x"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

// TestCLI_Scenarios tests that builtin, directory and config scenarios are listed
func TestCLI_Scenarios(t *testing.T) {
	binary := binaryPath(t)
	configPath := createTestConfig(t, TempDBPath(t))

	cmd := exec.Command(binary, "scenarios", "--config", configPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("scenarios command failed: %v\n%s", err, out)
	}

	output := string(out)
	for _, want := range []string{"simul", "api-calls", "rapid", "calls", "inline", "builtin", "file", "config"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

// TestCLI_ConfigInit tests writing a default config
func TestCLI_ConfigInit(t *testing.T) {
	binary := binaryPath(t)
	configPath := TempConfigPath(t)

	cmd := exec.Command(binary, "config", "init", "--config", configPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Config not written: %v", err)
	}
	if !strings.Contains(string(data), "counterpart = 'LARRY'") && !strings.Contains(string(data), `counterpart = "LARRY"`) {
		t.Errorf("Expected default counterpart in config, got: %s", data)
	}

	// Second init without --force fails
	cmd = exec.Command(binary, "config", "init", "--config", configPath)
	if err := cmd.Run(); err == nil {
		t.Error("Expected error when config exists")
	}
}

// TestCLI_InvalidCommand tests error handling for invalid commands
func TestCLI_InvalidCommand(t *testing.T) {
	binary := binaryPath(t)

	cmd := exec.Command(binary, "invalidcommand")
	out, err := cmd.CombinedOutput()

	// Should return error
	if err == nil {
		t.Error("Expected error for invalid command")
	}

	output := string(out)

	// Should suggest valid commands or show help
	if !strings.Contains(output, "unknown command") && !strings.Contains(output, "Usage") {
		t.Errorf("Expected error message or usage info, got: %s", output)
	}
}
