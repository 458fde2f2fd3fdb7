package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/odouglasrocha/apiplano/config"
)

func TestLoadMaterialsFrom(t *testing.T) {
	// Codes arrive both quoted and bare; weights use decimal commas.
	raw := `[
		{"Codigo": "93000111", "Material": "TORCIDA BACON 45G", "Gramagem": "0,045", "Und": 27, "Caixas": 12, "PPm": 60, "Pacote": "10,000"},
		{"Codigo": 93000222, "Material": "TORCIDA QUEIJO 70G", "Gramagem": "0,070", "Und": 18, "Caixas": 10, "PPm": 45, "Pacote": "10,000"},
		{"Codigo": "", "Material": "LINHA SEM CODIGO", "Gramagem": "0,050", "Und": 1, "Caixas": 1, "PPm": 1, "Pacote": ""}
	]`
	path := filepath.Join(t.TempDir(), "materials.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := config.LoadMaterialsFrom(path)
	if err != nil {
		t.Fatalf("LoadMaterialsFrom: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("got %d refs, want 2 (blank code dropped)", len(table))
	}

	bacon, ok := table.Lookup("93000111")
	if !ok {
		t.Fatal("quoted code missing")
	}
	if math.Abs(bacon.WeightPerUnitKg-0.045) > 1e-9 {
		t.Errorf("gramagem = %v, want 0.045", bacon.WeightPerUnitKg)
	}
	if math.Abs(bacon.PackageWeightKg-10) > 1e-9 {
		t.Errorf("pacote = %v, want 10", bacon.PackageWeightKg)
	}
	if bacon.UnitsPerBox != 27 || bacon.BoxesPerPallet != 12 || bacon.ThroughputPerMinute != 60 {
		t.Errorf("factors = %+v", bacon)
	}

	if _, ok := table.Lookup("93000222"); !ok {
		t.Error("bare numeric code missing")
	}
}

func TestLoadMaterialsFromMissingFile(t *testing.T) {
	if _, err := config.LoadMaterialsFrom(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("missing file must error (callers degrade to an empty table)")
	}
}
