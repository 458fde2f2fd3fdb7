package planning

import (
	"fmt"
	"math"
)

const (
	// shiftHoursPerDay is how long one machine runs within a day.
	shiftHoursPerDay = 22.0
	// machineFleetSize is the number of packaging machines on the floor.
	machineFleetSize = 24
	// completionEpsilon snaps near-complete progress to 100%.
	completionEpsilon = 1.0
)

// KPI is the derived dashboard state for one plan record.
type KPI struct {
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	PlannedBoxes float64 `json:"planned_boxes"`
	PlannedTons  float64 `json:"planned_tons"`

	// HasReference is false when the material is missing from the
	// reference sheet; pallet and time figures are then unavailable.
	HasReference bool `json:"has_reference"`

	PlannedPallets    int     `json:"planned_pallets"`
	ProducedPallets   int     `json:"produced_pallets"`
	RemainingPallets  int     `json:"remaining_pallets"`
	PercentComplete   float64 `json:"percent_complete"`
	Complete          bool    `json:"complete"`
	MachinesNeeded    int     `json:"machines_needed"`
	CapacityExceeded  bool    `json:"capacity_exceeded"`
	RemainingTime     string  `json:"remaining_time"`
	TimeAvailable     bool    `json:"time_available"`
}

// DeriveKPIs computes pallet counts, completion percentage and the
// remaining-time estimate for one plan record. Figures are derived on
// read, never stored; only PlannedBoxes/PlannedTons/ProducedBaseUnits are
// source data.
func DeriveKPIs(rec PlanRow, table MaterialTable) KPI {
	kpi := KPI{
		MaterialCode: rec.MaterialCode,
		MaterialName: rec.MaterialName,
		PlannedBoxes: rec.PlannedBoxes,
		PlannedTons:  rec.PlannedTons,
	}

	ref, ok := table.Lookup(rec.MaterialCode)
	if !ok || ref.BoxesPerPallet <= 0 || ref.UnitsPerBox <= 0 {
		kpi.RemainingTime = "N/A"
		return kpi
	}
	kpi.HasReference = true

	plannedPallets := math.Round(rec.PlannedBoxes / ref.BoxesPerPallet)
	producedPallets := math.Round(rec.ProducedBaseUnits / (ref.UnitsPerBox * ref.BoxesPerPallet))
	remaining := plannedPallets - producedPallets
	if remaining < 0 {
		remaining = 0
	}

	denom := plannedPallets
	if denom < 1 {
		denom = 1
	}
	percent := 100 - remaining/denom*100
	if percent < 0 {
		percent = 0
	}
	if math.Abs(percent-100) < completionEpsilon {
		percent = 100
	}

	kpi.PlannedPallets = int(plannedPallets)
	kpi.ProducedPallets = int(producedPallets)
	kpi.RemainingPallets = int(remaining)
	kpi.PercentComplete = percent

	if percent >= 100 {
		kpi.Complete = true
		kpi.RemainingTime = "Concluído"
		return kpi
	}

	if ref.ThroughputPerMinute <= 0 {
		kpi.RemainingTime = "N/A"
		return kpi
	}

	plannedUnits := rec.PlannedBoxes * ref.UnitsPerBox
	hoursOneMachine := plannedUnits / ref.ThroughputPerMinute / 60

	machinesIdeal := int(math.Ceil(hoursOneMachine / shiftHoursPerDay))
	machines := machinesIdeal
	if machines > machineFleetSize {
		machines = machineFleetSize
	}
	if machines < 1 {
		machines = 1
	}
	kpi.MachinesNeeded = machines
	kpi.CapacityExceeded = machinesIdeal > machineFleetSize

	remainingUnits := plannedUnits - rec.ProducedBaseUnits
	if remainingUnits < 0 {
		remainingUnits = 0
	}
	remainingMinutes := remainingUnits / ref.ThroughputPerMinute / float64(machines)

	kpi.RemainingTime = formatHoursMinutes(remainingMinutes)
	kpi.TimeAvailable = true
	return kpi
}

// formatHoursMinutes renders a minute count as HH:MM.
func formatHoursMinutes(minutes float64) string {
	h := int(math.Floor(minutes / 60))
	m := int(math.Floor(math.Mod(minutes, 60)))
	return fmt.Sprintf("%02d:%02d", h, m)
}
