package planning_test

import (
	"math"
	"testing"

	"github.com/odouglasrocha/apiplano/planning"
)

func testTable() planning.MaterialTable {
	return planning.MaterialTable{
		"93000222": {
			Code:                "93000222",
			Name:                "TORCIDA QUEIJO 70G",
			WeightPerUnitKg:     0.07,
			UnitsPerBox:         27,
			BoxesPerPallet:      12,
			ThroughputPerMinute: 60,
			PackageWeightKg:     10,
		},
		"93000555": {
			Code:           "93000555",
			Name:           "TORCIDA BACON 45G",
			UnitsPerBox:    0, // no box factor on file
			BoxesPerPallet: 10,
		},
	}
}

func TestNormalizeUnit(t *testing.T) {
	cases := map[string]planning.Unit{
		"UN":        planning.UnitBase,
		"unid":      planning.UnitBase,
		"BOLSAS":    planning.UnitBase,
		"":          planning.UnitBase,
		"cx":        planning.UnitBox,
		"CAIXAS":    planning.UnitBox,
		" kg ":      planning.UnitKilogram,
		"KGM":       planning.UnitKilogram,
		"QUILOS":    planning.UnitKilogram,
		"T":         planning.UnitTon,
		"TONELADAS": planning.UnitTon,
		"PALETE":    planning.UnitBase, // unrecognized falls back to base
	}
	for raw, want := range cases {
		if got := planning.NormalizeUnit(raw); got != want {
			t.Errorf("NormalizeUnit(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestToBaseUnitsBoxes(t *testing.T) {
	table := testTable()

	if got := table.ToBaseUnits("93000222", 5, "CX"); got != 135 {
		t.Fatalf("5 CX of 27 units = %v, want 135", got)
	}
	// Missing box factor falls back to 1 unit per box.
	if got := table.ToBaseUnits("93000555", 8, "CAIXA"); got != 8 {
		t.Fatalf("fallback box conversion = %v, want 8", got)
	}
	if got := table.ToBaseUnits("99999999", 3, "CX"); got != 3 {
		t.Fatalf("unknown material box conversion = %v, want 3", got)
	}
}

func TestToBaseUnitsMass(t *testing.T) {
	table := testTable()

	if got := table.ToBaseUnits("93000222", 7, "KG"); math.Abs(got-100) > 1e-9 {
		t.Fatalf("7 KG at 0.07 kg/unit = %v, want 100", got)
	}
	if got := table.ToBaseUnits("93000222", 0.07, "TON"); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("0.07 TON at 0.07 kg/unit = %v, want 1000", got)
	}
	// No weight on file: the 1 g floor keeps the conversion finite.
	if got := table.ToBaseUnits("93000555", 2, "KG"); math.Abs(got-2000) > 1e-9 {
		t.Fatalf("KG conversion with floor weight = %v, want 2000", got)
	}
}

func TestToBaseUnitsRejectsNonPositive(t *testing.T) {
	table := testTable()
	for _, unit := range []string{"UN", "CX", "KG", "TON"} {
		if got := table.ToBaseUnits("93000222", 0, unit); got != 0 {
			t.Errorf("zero qty in %s = %v, want 0", unit, got)
		}
		if got := table.ToBaseUnits("93000222", -4, unit); got != 0 {
			t.Errorf("negative qty in %s = %v, want 0", unit, got)
		}
		if got := table.ToBaseUnits("93000222", math.NaN(), unit); got != 0 {
			t.Errorf("NaN qty in %s = %v, want 0", unit, got)
		}
	}
}

func TestParseDecimalLocales(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"370.37", 370.37, true},
		{"1234,56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"0,060", 0.06, true},
		{" 42 ", 42, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := planning.ParseFloat(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseFloat(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseFloat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
