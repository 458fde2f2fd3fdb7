package planning_test

import (
	"math"
	"testing"

	"github.com/odouglasrocha/apiplano/planning"
)

func coverageTable() planning.MaterialTable {
	return planning.MaterialTable{
		"93000111": {Code: "93000111", Name: "TORCIDA BACON 45G", WeightPerUnitKg: 0.045, PackageWeightKg: 10},
		"93000112": {Code: "93000112", Name: "TORCIDA BACON 70G", WeightPerUnitKg: 0.07, PackageWeightKg: 10},
		"93000113": {Code: "93000113", Name: "TORCIDA BACON 120G", WeightPerUnitKg: 0.12, PackageWeightKg: 8},
		"93000222": {Code: "93000222", Name: "TORCIDA PIMENTA MEX 70G", WeightPerUnitKg: 0.07, PackageWeightKg: 10},
		"93000333": {Code: "93000333", Name: "SALGADINHO BACON 50G", WeightPerUnitKg: 0.05, PackageWeightKg: 10},
	}
}

func findCoverage(t *testing.T, report []planning.CategoryCoverage, key string) planning.CategoryCoverage {
	t.Helper()
	for _, cov := range report {
		if cov.Key == key {
			return cov
		}
	}
	t.Fatalf("category %s missing from report", key)
	return planning.CategoryCoverage{}
}

func TestCoverageReportBalance(t *testing.T) {
	table := coverageTable()
	records := []planning.PlanRow{
		// 0.5 t planned, 0.2 t produced: shortfall 0.3 t.
		{MaterialCode: "93000111", MaterialName: "TORCIDA BACON 45G", PlannedTons: 0.3, ProducedBaseUnits: 2000},
		{MaterialCode: "93000112", MaterialName: "TORCIDA BACON 70G", PlannedTons: 0.2, ProducedBaseUnits: 1571.43},
	}
	// 10 packages of 10 kg: 0.1 t on hand against a 0.3 t shortfall.
	stock := map[string]float64{"BACON": 10}

	cov := findCoverage(t, planning.CoverageReport(records, stock, table), "BACON")
	if math.Abs(cov.TonsOnHand-0.1) > 1e-9 {
		t.Errorf("tons on hand = %v, want 0.1", cov.TonsOnHand)
	}
	if math.Abs(cov.PlannedTons-0.5) > 1e-9 {
		t.Errorf("planned = %v, want 0.5", cov.PlannedTons)
	}
	if math.Abs(cov.ProducedTons-0.2) > 1e-4 {
		t.Errorf("produced = %v, want 0.2", cov.ProducedTons)
	}
	if math.Abs(cov.CoverageTons-(-0.2)) > 1e-4 {
		t.Errorf("coverage = %v, want -0.2", cov.CoverageTons)
	}
	if cov.Covered {
		t.Error("a negative balance must report not covered")
	}
	if len(cov.Items) != 2 {
		t.Errorf("matched items = %d, want 2", len(cov.Items))
	}
}

func TestCoverageRequiresProductLineMarker(t *testing.T) {
	table := coverageTable()
	records := []planning.PlanRow{
		{MaterialCode: "93000333", MaterialName: "SALGADINHO BACON 50G", PlannedTons: 5},
	}

	cov := findCoverage(t, planning.CoverageReport(records, nil, table), "BACON")
	if cov.PlannedTons != 0 || len(cov.Items) != 0 {
		t.Errorf("non product-line bacon matched: planned = %v items = %d", cov.PlannedTons, len(cov.Items))
	}
}

func TestCoverageMexicanaSpellings(t *testing.T) {
	table := coverageTable()
	records := []planning.PlanRow{
		{MaterialCode: "93000222", MaterialName: "TORCIDA PIMENTA MEX 70G", PlannedTons: 1},
		{MaterialCode: "93000224", MaterialName: "TORCIDA MEXICANA 45G", PlannedTons: 2},
	}

	cov := findCoverage(t, planning.CoverageReport(records, nil, table), "MEXICANA")
	if math.Abs(cov.PlannedTons-3) > 1e-9 {
		t.Errorf("planned = %v, want both spellings matched (3)", cov.PlannedTons)
	}
}

func TestCoveragePackageWeightMajorityVote(t *testing.T) {
	// Two bacon materials carry 10 kg packages, one carries 8 kg: the
	// majority value wins.
	cov := findCoverage(t, planning.CoverageReport(nil, map[string]float64{"BACON": 4}, coverageTable()), "BACON")
	if cov.PackageWeightKg != 10 {
		t.Errorf("package weight = %v, want majority 10", cov.PackageWeightKg)
	}
	if math.Abs(cov.TonsOnHand-0.04) > 1e-9 {
		t.Errorf("tons on hand = %v, want 0.04", cov.TonsOnHand)
	}
}

func TestCoverageReportListsAllCategories(t *testing.T) {
	report := planning.CoverageReport(nil, nil, planning.MaterialTable{})
	if len(report) != len(planning.CategoryKeys()) {
		t.Fatalf("got %d categories, want %d", len(report), len(planning.CategoryKeys()))
	}
	for _, cov := range report {
		if cov.TonsOnHand != 0 || cov.CoverageTons != 0 || !cov.Covered {
			t.Errorf("empty category %s should balance at zero, got %+v", cov.Key, cov)
		}
	}
}
