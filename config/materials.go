package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/odouglasrocha/apiplano/planning"
)

var materials planning.MaterialTable

// GetMaterials returns the loaded material reference table. Empty when
// the reference file is missing; conversions then run on fallbacks.
func GetMaterials() planning.MaterialTable {
	if materials == nil {
		return planning.MaterialTable{}
	}
	return materials
}

// flexCode accepts material codes written both quoted and bare, as
// different SAP exports disagree on the type.
type flexCode string

func (c *flexCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = flexCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*c = flexCode(n.String())
		return nil
	}
	return fmt.Errorf("material code is neither string nor number: %s", string(b))
}

// materialFile is the on-disk shape of one reference row. Weights use
// Brazilian decimal commas.
type materialFile struct {
	Codigo   flexCode `json:"Codigo"`
	Material string   `json:"Material"`
	Gramagem string   `json:"Gramagem"`
	Und      float64  `json:"Und"`
	Caixas   float64  `json:"Caixas"`
	PPm      float64  `json:"PPm"`
	Pacote   string   `json:"Pacote"`
}

// LoadMaterials reads the material reference sheet named by
// MATERIALS_FILE (default materials.json). A missing file is not fatal:
// the dashboard still serves plans, with conversion fallbacks and KPIs
// marked unavailable.
func LoadMaterials() {
	path := os.Getenv("MATERIALS_FILE")
	if path == "" {
		path = "materials.json"
	}

	table, err := LoadMaterialsFrom(path)
	if err != nil {
		log.Printf("material reference sheet unavailable (%s): %v", path, err)
		materials = planning.MaterialTable{}
		return
	}
	materials = table
	log.Printf("loaded %d material references from %s", len(table), path)
}

// LoadMaterialsFrom parses one reference sheet file into a table.
func LoadMaterialsFrom(path string) (planning.MaterialTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []materialFile
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	table := make(planning.MaterialTable, len(rows))
	for _, row := range rows {
		code := string(row.Codigo)
		if code == "" {
			continue
		}
		table[code] = planning.MaterialRef{
			Code:                code,
			Name:                row.Material,
			WeightPerUnitKg:     parseRefDecimal(row.Gramagem),
			UnitsPerBox:         row.Und,
			BoxesPerPallet:      row.Caixas,
			ThroughputPerMinute: row.PPm,
			PackageWeightKg:     parseRefDecimal(row.Pacote),
		}
	}
	return table, nil
}

func parseRefDecimal(s string) float64 {
	v, ok := planning.ParseFloat(s)
	if !ok {
		return 0
	}
	return v
}
