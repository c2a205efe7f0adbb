package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cryptotribes/server/internal/models"
)

func TestDefaultTuning_CoversAllTypes(t *testing.T) {
	tuning := DefaultTuning()

	for _, bt := range models.AllBuildingTypes {
		if _, ok := tuning.Buildings[bt]; !ok {
			t.Errorf("missing building spec for %q", bt)
		}
	}
	for _, tt := range models.AllTroopTypes {
		if _, ok := tuning.Troops[tt]; !ok {
			t.Errorf("missing troop spec for %q", tt)
		}
	}
}

func TestLoadTuning_EmptyPathReturnsDefaults(t *testing.T) {
	tuning, err := LoadTuning("")
	if err != nil {
		t.Fatalf("LoadTuning(\"\") error = %v", err)
	}
	if tuning.WallDefenseBonus != DefaultTuning().WallDefenseBonus {
		t.Errorf("WallDefenseBonus = %v, want default", tuning.WallDefenseBonus)
	}
}

func TestLoadTuning_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")

	content := `
wall_defense_bonus: 0.1
buildings:
  lumber:
    max_level: 5
    base_cost:
      wood: 10
    cost_growth: 1.5
    base_build_seconds: 60
    build_time_growth: 1.1
    produces: wood
    base_rate: 99
    rate_growth: 1.2
    points_per_level: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}

	if tuning.WallDefenseBonus != 0.1 {
		t.Errorf("WallDefenseBonus = %v, want 0.1", tuning.WallDefenseBonus)
	}
	if tuning.Buildings[models.BuildingLumber].BaseRate != 99 {
		t.Errorf("lumber base rate = %v, want 99", tuning.Buildings[models.BuildingLumber].BaseRate)
	}

	// Untouched entries keep their defaults.
	if tuning.Buildings[models.BuildingFarm].BaseRate != DefaultTuning().Buildings[models.BuildingFarm].BaseRate {
		t.Error("farm spec changed by unrelated override")
	}
}

func TestLoadTuning_UnknownBuilding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")

	content := `
buildings:
  castle:
    max_level: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuning(path); err == nil {
		t.Error("LoadTuning() expected error for unknown building type, got nil")
	}
}

func TestLoadTuning_MissingFile(t *testing.T) {
	if _, err := LoadTuning("/nonexistent/tuning.yaml"); err == nil {
		t.Error("LoadTuning() expected error for missing file, got nil")
	}
}
