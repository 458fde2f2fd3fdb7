package planning_test

import (
	"testing"

	"github.com/odouglasrocha/apiplano/planning"
)

func TestDeriveKPIsPalletRounding(t *testing.T) {
	// 370.37 boxes at 12 per pallet rounds to 31 pallets, not 30.86.
	kpi := planning.DeriveKPIs(planning.PlanRow{
		MaterialCode: "93000222",
		MaterialName: "TORCIDA QUEIJO 70G",
		PlannedBoxes: 370.37,
		PlannedTons:  10,
	}, testTable())

	if !kpi.HasReference {
		t.Fatal("expected a referenced material")
	}
	if kpi.PlannedPallets != 31 {
		t.Errorf("planned pallets = %d, want 31", kpi.PlannedPallets)
	}
	if kpi.RemainingPallets != 31 {
		t.Errorf("remaining pallets = %d, want 31", kpi.RemainingPallets)
	}
	if kpi.PercentComplete != 0 {
		t.Errorf("percent = %v, want 0", kpi.PercentComplete)
	}
}

func TestDeriveKPIsCompletionShortCircuit(t *testing.T) {
	table := testTable()
	rec := planning.PlanRow{
		MaterialCode: "93000222",
		PlannedBoxes: 324, // 27 pallets, 8748 units
		PlannedTons:  9,
	}

	rec.ProducedBaseUnits = 8748
	kpi := planning.DeriveKPIs(rec, table)
	if !kpi.Complete || kpi.PercentComplete != 100 {
		t.Fatalf("complete = %v percent = %v, want complete at 100", kpi.Complete, kpi.PercentComplete)
	}
	if kpi.RemainingTime != "Concluído" {
		t.Errorf("remaining time = %q, want Concluído", kpi.RemainingTime)
	}
	if kpi.TimeAvailable {
		t.Error("no time estimate should be computed once complete")
	}

	// Overproduction clamps to done, never beyond.
	rec.ProducedBaseUnits = 12000
	kpi = planning.DeriveKPIs(rec, table)
	if kpi.PercentComplete != 100 || kpi.RemainingPallets != 0 {
		t.Errorf("overproduction: percent = %v remaining = %d", kpi.PercentComplete, kpi.RemainingPallets)
	}
}

func TestDeriveKPIsNearCompleteSnapsTo100(t *testing.T) {
	// 1 pallet remaining out of 200 is 99.5%, inside the 1% snap window.
	table := planning.MaterialTable{
		"1": {Code: "1", Name: "X", UnitsPerBox: 10, BoxesPerPallet: 1, ThroughputPerMinute: 50},
	}
	kpi := planning.DeriveKPIs(planning.PlanRow{
		MaterialCode:      "1",
		PlannedBoxes:      200,
		ProducedBaseUnits: 1990,
	}, table)
	if kpi.PercentComplete != 100 || !kpi.Complete {
		t.Errorf("percent = %v complete = %v, want snap to 100", kpi.PercentComplete, kpi.Complete)
	}
}

func TestDeriveKPIsTimeEstimate(t *testing.T) {
	// 400 boxes * 27 units = 10800 units; at 60/min one machine covers it
	// in 3 h, so 1 machine; 10800 minus 1000 produced is 163.3 min = 02:43.
	kpi := planning.DeriveKPIs(planning.PlanRow{
		MaterialCode:      "93000222",
		PlannedBoxes:      400,
		ProducedBaseUnits: 1000,
	}, testTable())

	if !kpi.TimeAvailable {
		t.Fatal("expected a time estimate")
	}
	if kpi.MachinesNeeded != 1 {
		t.Errorf("machines = %d, want 1", kpi.MachinesNeeded)
	}
	if kpi.CapacityExceeded {
		t.Error("capacity should not be exceeded")
	}
	if kpi.RemainingTime != "02:43" {
		t.Errorf("remaining time = %q, want 02:43", kpi.RemainingTime)
	}
}

func TestDeriveKPIsCapacityExceeded(t *testing.T) {
	// 2,000,000 units at 60/min is 555 h, needing 26 machines over 22 h
	// days; the fleet caps at 24 and the overflow is flagged.
	table := planning.MaterialTable{
		"1": {Code: "1", Name: "X", UnitsPerBox: 1000, BoxesPerPallet: 100, ThroughputPerMinute: 60},
	}
	kpi := planning.DeriveKPIs(planning.PlanRow{
		MaterialCode: "1",
		PlannedBoxes: 2000,
	}, table)

	if !kpi.CapacityExceeded {
		t.Fatal("expected capacity exceeded")
	}
	if kpi.MachinesNeeded != 24 {
		t.Errorf("machines = %d, want fleet cap 24", kpi.MachinesNeeded)
	}
}

func TestDeriveKPIsMissingReference(t *testing.T) {
	kpi := planning.DeriveKPIs(planning.PlanRow{
		MaterialCode: "00000000",
		MaterialName: "SEM CADASTRO",
		PlannedBoxes: 100,
	}, testTable())

	if kpi.HasReference {
		t.Fatal("unknown material must not report a reference")
	}
	if kpi.RemainingTime != "N/A" {
		t.Errorf("remaining time = %q, want N/A", kpi.RemainingTime)
	}
	if kpi.TimeAvailable {
		t.Error("no estimate without a reference")
	}
}

func TestDeriveKPIsMissingThroughput(t *testing.T) {
	table := planning.MaterialTable{
		"1": {Code: "1", Name: "X", UnitsPerBox: 10, BoxesPerPallet: 5},
	}
	kpi := planning.DeriveKPIs(planning.PlanRow{MaterialCode: "1", PlannedBoxes: 50}, table)

	if !kpi.HasReference {
		t.Fatal("pallet figures should still be available")
	}
	if kpi.PlannedPallets != 10 {
		t.Errorf("planned pallets = %d, want 10", kpi.PlannedPallets)
	}
	if kpi.RemainingTime != "N/A" || kpi.TimeAvailable {
		t.Errorf("time = %q available = %v, want N/A without throughput", kpi.RemainingTime, kpi.TimeAvailable)
	}
}
