package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/pathutil"
	"github.com/nvandessel/neuropath/internal/store"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neuropath",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().Bool("global", false, "Use the global network")
	return rootCmd
}

// isolateHome sets HOME to a temp directory to avoid touching real ~/.neuropath/
// MUST be called for any test that creates stores or loads config
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	t.Setenv("USERPROFILE", tmpHome)
	for _, key := range []string{"NEUROPATH_DEFAULT_STRENGTH", "NEUROPATH_LEARNING_RATE", "NEUROPATH_DECAY_RATE", "NEUROPATH_LOG_LEVEL", "NEUROPATH_SERVER_ADDR"} {
		t.Setenv(key, "")
	}
}

// runCLI executes a command line against a fresh command tree rooted at dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newNeuronCmd(),
		newConnectCmd(),
		newStrengthenCmd(),
		newDecayCmd(),
		newPathCmd(),
		newGraphCmd(),
		newSimulateCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
	)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"--root", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// mustRun fails the test if the command errors.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	if err != nil {
		t.Fatalf("neuropath %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// setupDecisionNetwork initializes dir with the five-neuron decision chain.
func setupDecisionNetwork(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	mustRun(t, tmpDir, "init")
	mustRun(t, tmpDir, "neuron", "add", "Sensory Input", "Attention", "Memory Recall", "Risk Assessment", "Decision Output")
	mustRun(t, tmpDir, "connect", "Sensory Input", "Attention", "--weight", "0.3")
	mustRun(t, tmpDir, "connect", "Attention", "Memory Recall", "--weight", "0.4")
	mustRun(t, tmpDir, "connect", "Memory Recall", "Risk Assessment", "--weight", "0.3")
	mustRun(t, tmpDir, "connect", "Risk Assessment", "Decision Output", "--weight", "0.5")
	return tmpDir
}

func loadStored(t *testing.T, dir string) network.Snapshot {
	t.Helper()
	gs, err := store.NewSQLiteGraphStore(filepath.Join(dir, ".neuropath"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer gs.Close()
	snap, err := gs.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return snap
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"version", "init", "neuron", "connect", "strengthen", "decay", "path", "graph", "simulate", "history", "serve", "backup", "restore", "config"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"json", "root", "global"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version", "--json")

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["version"] != version {
		t.Errorf("version = %q, want %q", got["version"], version)
	}
}

func TestInitCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := mustRun(t, tmpDir, "init")
	if !strings.Contains(out, "Initialized .neuropath/") {
		t.Errorf("unexpected output: %q", out)
	}

	for _, name := range []string{"neuropath.db", "manifest.yaml"} {
		if _, err := os.Stat(filepath.Join(tmpDir, ".neuropath", name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	// Re-running init is harmless.
	mustRun(t, tmpDir, "init")
}

func TestInitCmd_Global(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := mustRun(t, tmpDir, "init", "--global", "--json")
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["scope"] != "global" {
		t.Errorf("scope = %q, want global", got["scope"])
	}
	want := filepath.Join(tmpDir, "home", ".neuropath")
	if got["path"] != want {
		t.Errorf("path = %q, want %q", got["path"], want)
	}
}

func TestCommandsRequireInit(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := runCLI(t, tmpDir, "neuron", "add", "A")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}

func TestPathCmd_ReinforcesAndRecords(t *testing.T) {
	dir := setupDecisionNetwork(t)

	out := mustRun(t, dir, "path", "Sensory Input", "Decision Output", "--json")
	var res network.SearchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	want := []string{"Sensory Input", "Attention", "Memory Recall", "Risk Assessment", "Decision Output"}
	if strings.Join(res.Path, "|") != strings.Join(want, "|") {
		t.Errorf("path = %v, want %v", res.Path, want)
	}
	if len(res.Reinforced) != 4 {
		t.Errorf("reinforced %d synapses, want 4", len(res.Reinforced))
	}

	// The reinforcement is persisted.
	snap := loadStored(t, dir)
	if w, _ := snap.Weight("Sensory Input", "Attention"); w < 0.44-1e-9 || w > 0.44+1e-9 {
		t.Errorf("stored weight = %v, want 0.44", w)
	}

	out = mustRun(t, dir, "path", "Sensory Input", "Decision Output")
	if !strings.Contains(out, "Path: Sensory Input -> Attention -> Memory Recall -> Risk Assessment -> Decision Output") {
		t.Errorf("unexpected output: %q", out)
	}

	out = mustRun(t, dir, "history", "--json")
	var hist struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &hist); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if hist.Count != 2 {
		t.Errorf("history count = %d, want 2", hist.Count)
	}
}

func TestPathCmd_NoPath(t *testing.T) {
	dir := setupDecisionNetwork(t)
	mustRun(t, dir, "neuron", "add", "Island")

	out := mustRun(t, dir, "path", "Sensory Input", "Island")
	if !strings.Contains(out, "No path from Sensory Input to Island") {
		t.Errorf("unexpected output: %q", out)
	}

	out = mustRun(t, dir, "history")
	if !strings.Contains(out, "no path") {
		t.Errorf("history should list the failed search: %q", out)
	}
}

func TestConnectCmd_Errors(t *testing.T) {
	dir := setupDecisionNetwork(t)

	_, err := runCLI(t, dir, "connect", "Attention", "Ghost")
	if !errors.Is(err, network.ErrPreconditionFailed) {
		t.Errorf("missing endpoint: got %v, want ErrPreconditionFailed", err)
	}

	_, err = runCLI(t, dir, "connect", "Attention", "Attention")
	if !errors.Is(err, network.ErrInvalidArgument) {
		t.Errorf("self loop: got %v, want ErrInvalidArgument", err)
	}

	_, err = runCLI(t, dir, "neuron", "add", " ")
	if !errors.Is(err, network.ErrInvalidArgument) {
		t.Errorf("blank key: got %v, want ErrInvalidArgument", err)
	}
}

func TestConnectCmd_DefaultWeight(t *testing.T) {
	dir := setupDecisionNetwork(t)
	mustRun(t, dir, "neuron", "add", "Reflex")

	out := mustRun(t, dir, "connect", "Sensory Input", "Reflex")
	if !strings.Contains(out, "weight: 0.5000") {
		t.Errorf("unexpected output: %q", out)
	}

	out = mustRun(t, dir, "connect", "Reflex", "Sensory Input", "--weight", "0.9")
	if !strings.Contains(out, "Updated") {
		t.Errorf("expected overwrite, got %q", out)
	}
}

func TestStrengthenAndDecayCmds(t *testing.T) {
	dir := setupDecisionNetwork(t)

	out := mustRun(t, dir, "strengthen", "Attention", "Sensory Input")
	if !strings.Contains(out, "0.3000 -> 0.4400") {
		t.Errorf("unexpected output: %q", out)
	}

	out = mustRun(t, dir, "strengthen", "Sensory Input", "Decision Output")
	if !strings.Contains(out, "nothing changed") {
		t.Errorf("unexpected output: %q", out)
	}

	mustRun(t, dir, "decay", "--rate", "0.4")
	snap := loadStored(t, dir)
	if w, _ := snap.Weight("Memory Recall", "Risk Assessment"); w != 0 {
		t.Errorf("weight = %v, want floored at 0", w)
	}
	if w, _ := snap.Weight("Sensory Input", "Attention"); w < 0.04-1e-9 || w > 0.04+1e-9 {
		t.Errorf("weight = %v, want 0.04", w)
	}

	if _, err := runCLI(t, dir, "decay", "--rate", "1.5"); !errors.Is(err, network.ErrInvalidArgument) {
		t.Errorf("bad rate: got %v, want ErrInvalidArgument", err)
	}
}

func TestGraphCmd(t *testing.T) {
	dir := setupDecisionNetwork(t)

	out := mustRun(t, dir, "graph")
	if !strings.HasPrefix(out, "graph neuropath {") {
		t.Errorf("expected DOT output, got %q", out)
	}
	if !strings.Contains(out, `"Attention" -- "Memory Recall" [penwidth=1.20`) {
		t.Errorf("missing weighted edge: %q", out)
	}

	out = mustRun(t, dir, "graph", "--format", "json")
	var g struct {
		NodeCount int `json:"node_count"`
		EdgeCount int `json:"edge_count"`
	}
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if g.NodeCount != 5 || g.EdgeCount != 4 {
		t.Errorf("counts = %d/%d, want 5/4", g.NodeCount, g.EdgeCount)
	}

	htmlPath := filepath.Join(dir, "graph.html")
	mustRun(t, dir, "graph", "--format", "html", "-o", htmlPath, "--no-open")
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("expected HTML file: %v", err)
	}

	if _, err := runCLI(t, dir, "graph", "--format", "png"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSimulateCmd_Demo(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := mustRun(t, tmpDir, "simulate")
	if !strings.Contains(out, "Scenario: decision") {
		t.Errorf("missing scenario header: %q", out)
	}
	if strings.Count(out, "Path: Sensory Input -> Attention -> Memory Recall -> Risk Assessment -> Decision Output") != 2 {
		t.Errorf("expected the same path twice: %q", out)
	}
	if !strings.Contains(out, "Attention--Sensory Input  0.5520") {
		t.Errorf("expected weight after two reinforcements: %q", out)
	}
}

func TestSimulateCmd_FileAndPersist(t *testing.T) {
	dir := setupDecisionNetwork(t)

	scenario := filepath.Join(dir, "scenario.yaml")
	content := `
name: fade
neurons: [A, B]
connections:
  - {a: A, b: B, weight: 0.3}
steps:
  - {action: path, start: A, end: B}
  - {action: decay, rate: 0.1}
`
	if err := os.WriteFile(scenario, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	mustRun(t, dir, "simulate", scenario, "--persist")

	snap := loadStored(t, dir)
	if len(snap.Nodes) != 2 {
		t.Errorf("persisted network has %d neurons, want the scenario's 2", len(snap.Nodes))
	}
	// 0.3 -> 0.44 -> 0.34
	if w, _ := snap.Weight("A", "B"); w < 0.34-1e-9 || w > 0.34+1e-9 {
		t.Errorf("weight = %v, want 0.34", w)
	}
}

func TestConfigCmd_SetGet(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	mustRun(t, tmpDir, "config", "set", "network.learning_rate", "0.5")

	out := mustRun(t, tmpDir, "config", "get", "network.learning_rate")
	if strings.TrimSpace(out) != "network.learning_rate = 0.5" {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := runCLI(t, tmpDir, "config", "set", "network.learning_rate", "2"); err == nil {
		t.Error("expected validation error for learning rate above 1")
	}
	if _, err := runCLI(t, tmpDir, "config", "get", "nope"); err == nil {
		t.Error("expected error for unknown key")
	}

	out = mustRun(t, tmpDir, "config", "list")
	if !strings.Contains(out, "network.learning_rate:     0.5000") {
		t.Errorf("list should show the saved value: %q", out)
	}
}

func TestConfiguredLearningRateAppliesToPath(t *testing.T) {
	dir := setupDecisionNetwork(t)
	mustRun(t, dir, "config", "set", "network.learning_rate", "0.5")

	mustRun(t, dir, "path", "Sensory Input", "Attention")
	snap := loadStored(t, dir)
	// 0.3 + 0.7 * 0.5
	if w, _ := snap.Weight("Sensory Input", "Attention"); w < 0.65-1e-9 || w > 0.65+1e-9 {
		t.Errorf("weight = %v, want 0.65", w)
	}
}

func TestBackupAndRestoreCmds(t *testing.T) {
	dir := setupDecisionNetwork(t)

	out := mustRun(t, dir, "backup", "--json")
	var created struct {
		Path     string `json:"path"`
		Neurons  int    `json:"neurons"`
		Synapses int    `json:"synapses"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if created.Neurons != 5 || created.Synapses != 4 {
		t.Errorf("backup counts = %d/%d, want 5/4", created.Neurons, created.Synapses)
	}
	if filepath.Dir(created.Path) != filepath.Join(dir, ".neuropath", "backups") {
		t.Errorf("backup written to %s", created.Path)
	}

	out = mustRun(t, dir, "backup", "list")
	if !strings.Contains(out, "5 neurons, 4 synapses") {
		t.Errorf("unexpected list output: %q", out)
	}

	out = mustRun(t, dir, "backup", "verify", created.Path)
	if !strings.Contains(out, "Backup OK") {
		t.Errorf("unexpected verify output: %q", out)
	}

	// Wipe the weights, then bring them back.
	mustRun(t, dir, "decay", "--rate", "1")
	mustRun(t, dir, "restore", created.Path, "--mode", "replace")

	snap := loadStored(t, dir)
	if w, _ := snap.Weight("Risk Assessment", "Decision Output"); w != 0.5 {
		t.Errorf("restored weight = %v, want 0.5", w)
	}
}

func TestRestoreCmd_MergeKeepsCurrentWeights(t *testing.T) {
	dir := setupDecisionNetwork(t)
	out := mustRun(t, dir, "backup", "--json")
	var created struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatal(err)
	}

	mustRun(t, dir, "strengthen", "Sensory Input", "Attention")
	out = mustRun(t, dir, "restore", created.Path)
	if !strings.Contains(out, "Synapses: 0 restored, 4 skipped") {
		t.Errorf("unexpected restore output: %q", out)
	}

	snap := loadStored(t, dir)
	if w, _ := snap.Weight("Sensory Input", "Attention"); w < 0.44-1e-9 || w > 0.44+1e-9 {
		t.Errorf("merge should keep the strengthened weight, got %v", w)
	}
}

func TestBackupCmd_RejectsOutsidePath(t *testing.T) {
	dir := setupDecisionNetwork(t)

	outside := filepath.Join(t.TempDir(), "escape.json.gz")
	if _, err := runCLI(t, dir, "backup", "--output", outside); err == nil || !strings.Contains(err.Error(), "backup path rejected") {
		t.Errorf("expected rejected path, got %v", err)
	}
	if _, err := runCLI(t, dir, "restore", outside); err == nil || !strings.Contains(err.Error(), "restore path rejected") {
		t.Errorf("expected rejected path, got %v", err)
	}
	if _, err := runCLI(t, dir, "restore", outside); !errors.Is(err, pathutil.ErrOutsideSandbox) {
		t.Errorf("restore outside sandbox: got %v, want ErrOutsideSandbox", err)
	}
	if _, err := runCLI(t, dir, "restore", outside, "--mode", "overwrite"); !errors.Is(err, network.ErrInvalidArgument) {
		t.Errorf("bad mode: got %v, want ErrInvalidArgument", err)
	}
}
