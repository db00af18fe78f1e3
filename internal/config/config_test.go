package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_ValidWorkload(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
RandomSeed: 12345
Actors:
- Name: InsertActor
  Type: Insert
  Collection: people
  Phases:
  - Phase: 0
    Repeat: 1000
  - Phase: 1
    Duration: 30s
`
	cfg := loadConfigFromString(t, content)

	if cfg.RandomSeed != 12345 {
		t.Errorf("RandomSeed = %d, expected 12345", cfg.RandomSeed)
	}
	if len(cfg.Actors) != 1 {
		t.Fatalf("expected 1 actor, got %d", len(cfg.Actors))
	}
	actor := cfg.Actors[0]
	if actor.Name != "InsertActor" || actor.Type != "Insert" {
		t.Errorf("unexpected actor: %+v", actor)
	}
	if v, ok := actor.Extra["Collection"]; !ok || v != "people" {
		t.Errorf("expected Extra[Collection] = people, got %v (ok=%v)", v, ok)
	}
	if len(actor.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(actor.Phases))
	}
	if actor.Phases[0].Repeat == nil || *actor.Phases[0].Repeat != 1000 {
		t.Errorf("phase 0 Repeat = %v, expected 1000", actor.Phases[0].Repeat)
	}
	if actor.Phases[1].Duration == nil || *actor.Phases[1].Duration != 30*time.Second {
		t.Errorf("phase 1 Duration = %v, expected 30s", actor.Phases[1].Duration)
	}
}

func TestLoadConfig_DefaultsRandomSeedWhenAbsent(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: A
  Type: Insert
`
	cfg := loadConfigFromString(t, content)
	if cfg.RandomSeed != defaultRandomSeed {
		t.Errorf("RandomSeed = %d, expected default %d", cfg.RandomSeed, defaultRandomSeed)
	}
}

func TestLoadConfig_RejectsWrongSchemaVersion(t *testing.T) {
	content := `
SchemaVersion: 2020-01-01
Actors:
- Name: A
  Type: Insert
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	_, err := LoadConfig(tmpFile)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfig_RejectsMissingActorName(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Type: Insert
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	_, err := LoadConfig(tmpFile)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfig_RejectsDuplicatePhaseNumber(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: A
  Type: Insert
  Phases:
  - Phase: 0
    Repeat: 1
  - Phase: 0
    Repeat: 2
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	_, err := LoadConfig(tmpFile)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfig_RejectsDataEntryMissingFile(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: A
  Type: Insert
  Data:
  - Name: users
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	_, err := LoadConfig(tmpFile)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfig_SetsBaseDirFromWorkloadPath(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: A
  Type: Insert
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseDir != filepath.Dir(tmpFile) {
		t.Errorf("BaseDir = %q, expected %q", cfg.BaseDir, filepath.Dir(tmpFile))
	}
}

func TestLoadConfig_PhaseNumberDefaultsFromIndex(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: A
  Type: Insert
  Phases:
  - Repeat: 1
  - Repeat: 2
  - Repeat: 3
`
	cfg := loadConfigFromString(t, content)
	phases := cfg.Actors[0].Phases
	for i, p := range phases {
		if p.Phase != nil {
			t.Errorf("phase %d: expected Phase to be nil (defaulted), got %v", i, *p.Phase)
		}
	}
}

func TestLoadConfig_ParsesThresholds(t *testing.T) {
	content := `
SchemaVersion: 2018-07-01
Actors:
- Name: InsertActor
  Type: Insert
Thresholds:
  InsertActor.id-0.insert:
    p99: 50ms
`
	cfg := loadConfigFromString(t, content)
	bound, ok := cfg.Thresholds["InsertActor.id-0.insert"]
	if !ok {
		t.Fatalf("expected a threshold for InsertActor.id-0.insert, got %+v", cfg.Thresholds)
	}
	if bound.P99 != 50*time.Millisecond {
		t.Errorf("P99 = %v, expected 50ms", bound.P99)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/workload.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	content := `
SchemaVersion: "2018-07-01
Actors: [[[invalid
`
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	_, err := LoadConfig(tmpFile)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestPhaseConfig_Get_PhaseOverridesActor(t *testing.T) {
	actor := ActorConfig{Extra: map[string]interface{}{"Collection": "actorLevel"}}
	phase := PhaseConfig{Extra: map[string]interface{}{"Collection": "phaseLevel"}}

	v, ok := phase.Get(actor, "Collection")
	if !ok || v != "phaseLevel" {
		t.Errorf("Get(Collection) = %v, expected phaseLevel override", v)
	}
}

func TestPhaseConfig_Get_InheritsFromActor(t *testing.T) {
	actor := ActorConfig{Extra: map[string]interface{}{"Collection": "actorLevel"}}
	phase := PhaseConfig{}

	v, ok := phase.Get(actor, "Collection")
	if !ok || v != "actorLevel" {
		t.Errorf("Get(Collection) = %v, expected inherited actorLevel", v)
	}
}

func TestPhaseConfig_Get_MissingKey(t *testing.T) {
	actor := ActorConfig{}
	phase := PhaseConfig{}

	if _, ok := phase.Get(actor, "Nope"); ok {
		t.Error("expected ok=false for a key present nowhere")
	}
}

// Helper functions

func loadConfigFromString(t *testing.T, content string) *Config {
	t.Helper()
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "workload.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return tmpFile
}
