package models

import (
	"context"
	"errors"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/planning"
	"gorm.io/gorm"
)

// PlanRecord is one material line of the active weekly production plan.
// The table always holds exactly one plan: uploading a new sheet replaces
// every row. Derived KPI figures are never stored here.
type PlanRecord struct {
	ID                int       `gorm:"primary_key" json:"id"`
	MaterialCode      string    `gorm:"size:32;uniqueIndex;not null" json:"material_code"`
	MaterialName      string    `gorm:"size:150;not null" json:"material_name"`
	PlannedBoxes      float64   `gorm:"not null" json:"planned_boxes"`
	PlannedTons       float64   `gorm:"not null" json:"planned_tons"`
	ProducedBaseUnits float64   `gorm:"not null;default:0" json:"produced_base_units"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PlanRow converts a stored record into the planning core's shape.
func (r *PlanRecord) PlanRow() planning.PlanRow {
	return planning.PlanRow{
		MaterialCode:      r.MaterialCode,
		MaterialName:      r.MaterialName,
		PlannedBoxes:      r.PlannedBoxes,
		PlannedTons:       r.PlannedTons,
		ProducedBaseUnits: r.ProducedBaseUnits,
	}
}

// ReplacePlan swaps the entire active plan for the parsed rows, in one
// transaction. Readers never observe a half-replaced plan.
func ReplacePlan(ctx context.Context, rows []planning.PlanRow) ([]*PlanRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	records := make([]*PlanRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, &PlanRecord{
			MaterialCode:      row.MaterialCode,
			MaterialName:      row.MaterialName,
			PlannedBoxes:      row.PlannedBoxes,
			PlannedTons:       row.PlannedTons,
			ProducedBaseUnits: row.ProducedBaseUnits,
		})
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&PlanRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ApplyProductionUpdate overwrites produced quantities from an aggregated
// production report. Every record is zeroed first: a material absent from
// today's report has produced nothing today. Totals whose code matches no
// plan record are counted, not inserted.
func ApplyProductionUpdate(ctx context.Context, totals []planning.ProducedTotal) (updated int, notFound int, err error) {
	db := config.GetDB()
	if db == nil {
		return 0, 0, errors.New("database not ready")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PlanRecord{}).Where("1 = 1").
			Update("produced_base_units", 0).Error; err != nil {
			return err
		}

		for _, total := range totals {
			res := tx.Model(&PlanRecord{}).
				Where("material_code = ?", total.MaterialCode).
				Update("produced_base_units", total.BaseUnits)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				updated++
			} else {
				notFound++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return updated, notFound, nil
}

// GetPlanRecords returns the active plan ordered by material code.
func GetPlanRecords(ctx context.Context) ([]*PlanRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	var records []*PlanRecord
	err := db.WithContext(ctx).
		Order("CAST(material_code AS UNSIGNED), material_code").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PlanStatus reports how many records the active plan holds and when it
// last changed.
func PlanStatus(ctx context.Context) (int64, *time.Time, error) {
	db := config.GetDB()
	if db == nil {
		return 0, nil, errors.New("database not ready")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&PlanRecord{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var last struct {
		UpdatedAt *time.Time
	}
	err := db.WithContext(ctx).Model(&PlanRecord{}).
		Select("MAX(updated_at) AS updated_at").Scan(&last).Error
	if err != nil {
		return 0, nil, err
	}
	return count, last.UpdatedAt, nil
}
