package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "pile" {
		t.Errorf("expected scenario pile, got %s", cfg.Scenario)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "granule.yaml")

	cfg := DefaultConfig()
	cfg.Scenario = "chain"
	cfg.Seed = 99
	cfg.Physics.Restitution = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scenario != "chain" || loaded.Seed != 99 {
		t.Errorf("loaded %q/%d, want chain/99", loaded.Scenario, loaded.Seed)
	}
	if loaded.Physics.Restitution != 0.5 {
		t.Errorf("restitution = %v, want 0.5", loaded.Physics.Restitution)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("scenario: newton\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scenario != "newton" {
		t.Errorf("scenario = %q, want newton", cfg.Scenario)
	}
	if cfg.Grid.CellSize != DefaultCellSize {
		t.Errorf("cell_size = %v, want default %v", cfg.Grid.CellSize, DefaultCellSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative dt")
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"restitution above one", func(c *Config) { c.Physics.Restitution = 1.5 }},
		{"negative friction", func(c *Config) { c.Physics.Friction = -0.1 }},
		{"momentum factor above one", func(c *Config) { c.Physics.MomentumFactor = 2 }},
		{"zero cell size", func(c *Config) { c.Grid.CellSize = 0 }},
		{"zero num cells", func(c *Config) { c.Grid.NumCells = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("newton")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Physics.Restitution != 1.0 {
		t.Errorf("expected restitution 1.0, got %f", cfg.Physics.Restitution)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) == 0 {
		t.Error("expected presets")
	}
}
