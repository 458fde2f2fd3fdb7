package planning

import (
	"fmt"
	"math"
	"strings"
)

// Row is one spreadsheet row keyed by its (trimmed) header cell.
type Row map[string]string

// First returns the first non-blank value among the given header aliases.
func (r Row) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			v = strings.TrimSpace(v)
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// RowsFromSheet turns raw worksheet cells into header-keyed rows. The
// first row is the header; short rows are padded with blanks.
func RowsFromSheet(cells [][]string) []Row {
	if len(cells) < 2 {
		return nil
	}
	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(line) {
				row[h] = line[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ValidationError reports a spreadsheet row that is missing a required
// column. Row is the 1-based worksheet row number (header is row 1).
type ValidationError struct {
	Row   int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dados obrigatórios faltando na linha %d: %s", e.Row, e.Field)
}

// Accepted header aliases for plan sheets, in priority order.
var (
	planCodeAliases  = []string{"CodMaterialProducao", "Código Material", "Codigo"}
	planNameAliases  = []string{"MaterialProducao", "Material"}
	planBoxesAliases = []string{"PlanoCaixasFardos", "Plano Caixas", "Caixas"}
	planTonsAliases  = []string{"Tons", "Toneladas"}
)

// Accepted header aliases for production-update sheets.
var (
	updateCodeAliases = []string{"CodMaterialSap", "Código SAP", "Codigo"}
	updateQtyAliases  = []string{"Qtd_real_origem", "Quantidade", "Produzido"}
	updateUnitAliases = []string{"Unid_medida_basica", "Unidade"}
)

// PlanRow is one parsed line of a weekly production plan.
type PlanRow struct {
	MaterialCode      string
	MaterialName      string
	PlannedBoxes      float64
	PlannedTons       float64
	ProducedBaseUnits float64
}

// ParsePlanRows validates and coerces plan rows. A row missing any
// required column aborts the whole batch with a *ValidationError naming
// the worksheet row, so a malformed upload never half-replaces a plan.
// Rows whose values fail numeric coercion after validation are dropped
// silently, matching how planners clean up ad-hoc footer lines.
func ParsePlanRows(rows []Row) ([]PlanRow, error) {
	for i, row := range rows {
		if _, ok := row.First(planCodeAliases...); !ok {
			return nil, &ValidationError{Row: i + 2, Field: "código do material"}
		}
		if _, ok := row.First(planNameAliases...); !ok {
			return nil, &ValidationError{Row: i + 2, Field: "material"}
		}
		if _, ok := row.First(planBoxesAliases...); !ok {
			return nil, &ValidationError{Row: i + 2, Field: "plano de caixas"}
		}
		if _, ok := row.First(planTonsAliases...); !ok {
			return nil, &ValidationError{Row: i + 2, Field: "toneladas"}
		}
	}

	out := make([]PlanRow, 0, len(rows))
	for _, row := range rows {
		code, _ := row.First(planCodeAliases...)
		name, _ := row.First(planNameAliases...)
		boxesRaw, _ := row.First(planBoxesAliases...)
		tonsRaw, _ := row.First(planTonsAliases...)

		if _, ok := ParseFloat(code); !ok {
			continue
		}
		boxes, okBoxes := ParseFloat(boxesRaw)
		tons, okTons := ParseFloat(tonsRaw)
		if !okBoxes || !okTons {
			continue
		}

		produced := 0.0
		if raw, ok := row.First("BolsasProduzido"); ok {
			produced = ParseFloatOrZero(raw)
		}

		out = append(out, PlanRow{
			MaterialCode:      code,
			MaterialName:      name,
			PlannedBoxes:      boxes,
			PlannedTons:       tons,
			ProducedBaseUnits: produced,
		})
	}
	return out, nil
}

// UpdateRow is one parsed line of a production-update sheet.
type UpdateRow struct {
	MaterialCode string
	Quantity     float64
	UnitLabel    string
}

// ParseUpdateRows coerces update rows, dropping lines with a non-numeric
// material code or a non-positive quantity. The unit defaults to base
// units when the column is absent.
func ParseUpdateRows(rows []Row) []UpdateRow {
	out := make([]UpdateRow, 0, len(rows))
	for _, row := range rows {
		code, ok := row.First(updateCodeAliases...)
		if !ok {
			continue
		}
		if _, numeric := ParseFloat(code); !numeric {
			continue
		}

		qtyRaw, ok := row.First(updateQtyAliases...)
		if !ok {
			continue
		}
		qty, numeric := ParseFloat(qtyRaw)
		if !numeric || qty <= 0 {
			continue
		}

		unit := string(UnitBase)
		if raw, ok := row.First(updateUnitAliases...); ok {
			unit = raw
		}

		out = append(out, UpdateRow{MaterialCode: code, Quantity: qty, UnitLabel: unit})
	}
	return out
}

// ProducedTotal is the aggregated production for one material, already
// converted to base units and rounded.
type ProducedTotal struct {
	MaterialCode string
	BaseUnits    float64
	RowCount     int
}

// AggregateUpdates groups update rows by material, converts each row to
// base units and sums before rounding. Rounding once per material, not
// per row, keeps split reports (e.g. 5 CX + 3 CX) equal to a single
// combined row. Totals come back in first-seen order.
func AggregateUpdates(rows []UpdateRow, table MaterialTable) []ProducedTotal {
	index := make(map[string]int)
	totals := make([]ProducedTotal, 0, len(rows))

	for _, row := range rows {
		converted := table.ToBaseUnits(row.MaterialCode, row.Quantity, row.UnitLabel)
		i, ok := index[row.MaterialCode]
		if !ok {
			index[row.MaterialCode] = len(totals)
			totals = append(totals, ProducedTotal{MaterialCode: row.MaterialCode})
			i = len(totals) - 1
		}
		totals[i].BaseUnits += converted
		totals[i].RowCount++
	}

	for i := range totals {
		totals[i].BaseUnits = math.Round(totals[i].BaseUnits)
	}
	return totals
}
