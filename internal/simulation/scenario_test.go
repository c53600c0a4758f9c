package simulation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/neuropath/internal/network"
)

const decisionYAML = `
name: yaml-decision
network:
  learning_rate: 0.5
neurons: [A, B, C]
connections:
  - {a: A, b: B, weight: 0.2}
  - {a: B, b: C}
steps:
  - {action: path, start: A, end: C, label: first}
  - {action: strengthen, a: A, b: B, repeat: 2}
  - {action: decay, rate: 0.1}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(decisionYAML))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}

	if sc.Name != "yaml-decision" {
		t.Errorf("Name = %q, want yaml-decision", sc.Name)
	}
	if len(sc.Neurons) != 3 {
		t.Errorf("Neurons = %v, want 3 entries", sc.Neurons)
	}
	if sc.Connections[0].Weight == nil || *sc.Connections[0].Weight != 0.2 {
		t.Errorf("first connection weight = %v, want 0.2", sc.Connections[0].Weight)
	}
	if sc.Connections[1].Weight != nil {
		t.Errorf("second connection weight should be unset, got %v", *sc.Connections[1].Weight)
	}
	if sc.Steps[1].Repeat != 2 {
		t.Errorf("Repeat = %d, want 2", sc.Steps[1].Repeat)
	}
	if sc.Steps[2].Rate == nil || *sc.Steps[2].Rate != 0.1 {
		t.Errorf("decay rate = %v, want 0.1", sc.Steps[2].Rate)
	}
}

func TestConfigOverrides_Apply(t *testing.T) {
	sc, err := ParseScenario([]byte(decisionYAML))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}

	cfg := sc.Network.Apply(network.DefaultConfig())
	if cfg.LearningRate != 0.5 {
		t.Errorf("LearningRate = %v, want 0.5", cfg.LearningRate)
	}
	if cfg.DefaultStrength != 0.5 || cfg.DecayRate != 0.05 {
		t.Errorf("unset overrides should keep defaults, got %+v", cfg)
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no neurons", "name: x\n", "no neurons"},
		{"unknown action", "neurons: [A]\nsteps:\n  - {action: fire}\n", "unknown action"},
		{"path without end", "neurons: [A]\nsteps:\n  - {action: path, start: A}\n", "start and end"},
		{"strengthen without b", "neurons: [A]\nsteps:\n  - {action: strengthen, a: A}\n", "a and b"},
		{"negative repeat", "neurons: [A]\nsteps:\n  - {action: decay, repeat: -1}\n", "repeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseScenario() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(decisionYAML), 0600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if len(sc.Steps) != 3 {
		t.Errorf("Steps = %d, want 3", len(sc.Steps))
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
