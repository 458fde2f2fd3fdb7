package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/planning"
	"gorm.io/gorm/clause"
)

// IntermediateStock is the counted on-hand aroma stock for one category,
// in packages. One row per category key.
type IntermediateStock struct {
	ID           int       `gorm:"primary_key" json:"id"`
	CategoryKey  string    `gorm:"size:32;uniqueIndex;not null" json:"category_key"`
	PackageCount float64   `gorm:"not null;default:0" json:"package_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertIntermediateStock stores a counted package quantity for one aroma
// category, creating the row on first count. The key must name a known
// category and the count must be a non-negative finite number.
func UpsertIntermediateStock(ctx context.Context, key string, packageCount float64) (*IntermediateStock, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if !planning.IsCategoryKey(key) {
		return nil, fmt.Errorf("categoria desconhecida: %s", key)
	}
	if math.IsNaN(packageCount) || math.IsInf(packageCount, 0) || packageCount < 0 {
		return nil, errors.New("quantidade de pacotes inválida")
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	entry := IntermediateStock{CategoryKey: key, PackageCount: packageCount}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"package_count", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}

	var saved IntermediateStock
	if err := db.WithContext(ctx).Where("category_key = ?", key).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetIntermediateStocks returns every stored stock entry in category
// display order; categories never counted are absent.
func GetIntermediateStocks(ctx context.Context) ([]*IntermediateStock, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	var entries []*IntermediateStock
	err := db.WithContext(ctx).Order("category_key").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	order := make(map[string]int, len(planning.CategoryKeys()))
	for i, k := range planning.CategoryKeys() {
		order[k] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return order[entries[i].CategoryKey] < order[entries[j].CategoryKey]
	})
	return entries, nil
}

// StockByCategory loads the stock entries as a key-to-packages map for
// the coverage calculation.
func StockByCategory(ctx context.Context) (map[string]float64, error) {
	entries, err := GetIntermediateStocks(ctx)
	if err != nil {
		return nil, err
	}
	stock := make(map[string]float64, len(entries))
	for _, e := range entries {
		stock[e.CategoryKey] = e.PackageCount
	}
	return stock, nil
}
