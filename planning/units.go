// Package planning holds the pure production-planning core: unit
// normalization, spreadsheet row parsing, KPI derivation, intermediate
// stock coverage and report summarization. It has no I/O; handlers and
// cmd tools feed it data and persist the results.
package planning

import (
	"math"
	"strings"
)

// Unit is a normalized measurement unit for production quantities.
type Unit string

const (
	// UnitBase is the base counting unit (bags/pouches).
	UnitBase Unit = "UN"
	// UnitBox is a shipping box holding UnitsPerBox base units.
	UnitBox Unit = "CX"
	// UnitKilogram is mass in kilograms.
	UnitKilogram Unit = "KG"
	// UnitTon is mass in metric tons.
	UnitTon Unit = "TON"
)

// minWeightPerUnitKg guards conversions from mass when a material has no
// usable weight on file. 1 g per unit keeps the division finite.
const minWeightPerUnitKg = 0.001

// NormalizeUnit maps the free-form unit labels seen in production
// spreadsheets onto one of the four canonical units. Unrecognized labels
// are treated as base units.
func NormalizeUnit(raw string) Unit {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "UN", "UNID", "UNIDADE", "BOLSA", "BOLSAS", "BOL":
		return UnitBase
	case "CX", "CAIXA", "CAIXAS":
		return UnitBox
	case "KG", "KGM", "KILO", "QUILOS":
		return UnitKilogram
	case "TON", "TONELADA", "TONELADAS", "T":
		return UnitTon
	}
	return UnitBase
}

// MaterialRef is the reference sheet for one material: conversion factors
// and machine throughput used to interpret plan and production rows.
type MaterialRef struct {
	Code string `json:"codigo"`
	Name string `json:"material"`
	// WeightPerUnitKg is the mass of one base unit, in kilograms.
	WeightPerUnitKg float64 `json:"gramagem_kg"`
	// UnitsPerBox is how many base units one box holds.
	UnitsPerBox float64 `json:"und_por_caixa"`
	// BoxesPerPallet is how many boxes one pallet holds.
	BoxesPerPallet float64 `json:"caixas_por_palete"`
	// ThroughputPerMinute is base units produced per machine per minute.
	ThroughputPerMinute float64 `json:"ppm"`
	// PackageWeightKg is the mass of one intermediate-stock package.
	PackageWeightKg float64 `json:"pacote_kg"`
}

// MaterialTable indexes material references by code.
type MaterialTable map[string]MaterialRef

func (t MaterialTable) Lookup(code string) (MaterialRef, bool) {
	ref, ok := t[strings.TrimSpace(code)]
	return ref, ok
}

// ToBaseUnits converts qty expressed in the raw unit label into base units
// for the given material. Unknown materials fall back to permissive
// defaults (1 unit per box, minimum weight) so a partial reference sheet
// degrades instead of dropping production. Non-positive or non-finite
// quantities convert to zero for every unit kind.
func (t MaterialTable) ToBaseUnits(code string, qty float64, unitLabel string) float64 {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0
	}

	ref, _ := t.Lookup(code)
	switch NormalizeUnit(unitLabel) {
	case UnitBox:
		unitsPerBox := ref.UnitsPerBox
		if unitsPerBox <= 0 {
			unitsPerBox = 1
		}
		return qty * unitsPerBox
	case UnitKilogram:
		return qty / weightOrMin(ref)
	case UnitTon:
		return qty * 1000 / weightOrMin(ref)
	default:
		return qty
	}
}

func weightOrMin(ref MaterialRef) float64 {
	if ref.WeightPerUnitKg > 0 {
		return ref.WeightPerUnitKg
	}
	return minWeightPerUnitKg
}
