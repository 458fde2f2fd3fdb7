package planning

import (
	"sort"
	"strings"
)

// productLineMarker restricts coverage to the snack line these aroma
// stocks feed; other plan records never consume intermediate stock.
const productLineMarker = "TORCIDA"

// Category is one intermediate-stock aroma category.
type Category struct {
	Key   string
	Label string
	match func(name string) bool
}

func contains(sub ...string) func(string) bool {
	return func(name string) bool {
		for _, s := range sub {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// Categories are matched against normalized (uppercased, whitespace
// collapsed) material names. MEXICANA accepts the two spellings the plant
// uses; PAO_DE_ALHO matches on the de-accented spelling SAP exports.
var categories = []Category{
	{Key: "BACON", Label: "Bacon", match: contains("BACON")},
	{Key: "CEBOLA", Label: "Cebola", match: contains("CEBOLA")},
	{Key: "CHURRASCO", Label: "Churrasco", match: contains("CHURRASCO")},
	{Key: "COSTELA", Label: "Costela", match: contains("COSTELA")},
	{Key: "MEXICANA", Label: "Pimenta Mexicana", match: contains("PIMENTA MEX", "MEXICANA")},
	{Key: "QUEIJO", Label: "Queijo", match: contains("QUEIJO")},
	{Key: "CAMARAO", Label: "Camarão", match: contains("CAMARAO")},
	{Key: "VINAGRETE", Label: "Vinagrete", match: contains("VINAGRETE")},
	{Key: "PAO_DE_ALHO", Label: "Pão de Alho", match: contains("PAO DE ALHO")},
}

// CategoryKeys lists the valid aroma keys in display order.
func CategoryKeys() []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Key
	}
	return keys
}

// IsCategoryKey reports whether key names a known aroma category.
func IsCategoryKey(key string) bool {
	for _, c := range categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// NormalizeName uppercases a material name and collapses runs of
// whitespace, so category matching survives sloppy spreadsheet spacing.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// CoverageItem is one plan record matched into a category.
type CoverageItem struct {
	MaterialCode string  `json:"material_code"`
	MaterialName string  `json:"material_name"`
	PlannedTons  float64 `json:"planned_tons"`
	ProducedTons float64 `json:"produced_tons"`
}

// CategoryCoverage is the stock-versus-demand balance for one category.
// CoverageTons is signed: non-negative means on-hand stock covers the
// remaining demand, negative is the uncovered gap.
type CategoryCoverage struct {
	Key             string         `json:"key"`
	Label           string         `json:"label"`
	PackageCount    float64        `json:"package_count"`
	PackageWeightKg float64        `json:"package_weight_kg"`
	TonsOnHand      float64        `json:"tons_on_hand"`
	PlannedTons     float64        `json:"planned_tons"`
	ProducedTons    float64        `json:"produced_tons"`
	ShortfallTons   float64        `json:"shortfall_tons"`
	CoverageTons    float64        `json:"coverage_tons"`
	Covered         bool           `json:"covered"`
	Items           []CoverageItem `json:"items"`
}

// CoverageReport balances intermediate-stock packages against the
// remaining demand of every category. stock maps category key to package
// count; categories with no stock entry report zero on hand.
func CoverageReport(records []PlanRow, stock map[string]float64, table MaterialTable) []CategoryCoverage {
	out := make([]CategoryCoverage, 0, len(categories))
	for _, cat := range categories {
		cov := CategoryCoverage{
			Key:             cat.Key,
			Label:           cat.Label,
			PackageCount:    stock[cat.Key],
			PackageWeightKg: table.packageWeightFor(cat),
			Items:           []CoverageItem{},
		}
		cov.TonsOnHand = cov.PackageCount * cov.PackageWeightKg / 1000

		for _, rec := range records {
			name := NormalizeName(rec.MaterialName)
			if !strings.Contains(name, productLineMarker) || !cat.match(name) {
				continue
			}
			producedTons := rec.ProducedBaseUnits * table.weightForRecord(rec) / 1000
			cov.PlannedTons += rec.PlannedTons
			cov.ProducedTons += producedTons
			cov.Items = append(cov.Items, CoverageItem{
				MaterialCode: rec.MaterialCode,
				MaterialName: rec.MaterialName,
				PlannedTons:  rec.PlannedTons,
				ProducedTons: producedTons,
			})
		}

		cov.ShortfallTons = cov.PlannedTons - cov.ProducedTons
		cov.CoverageTons = cov.TonsOnHand - cov.ShortfallTons
		cov.Covered = cov.CoverageTons >= 0
		out = append(out, cov)
	}
	return out
}

// packageWeightFor picks the package weight for a category by majority
// vote over the materials that belong to it. References disagree when a
// recipe changes mid-season; the most common value wins, ties broken by
// lowest material code so the result is stable.
func (t MaterialTable) packageWeightFor(cat Category) float64 {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	votes := make(map[float64]int)
	var winner float64
	var winnerVotes int
	for _, code := range codes {
		ref := t[code]
		name := NormalizeName(ref.Name)
		if !strings.Contains(name, productLineMarker) || !cat.match(name) {
			continue
		}
		if ref.PackageWeightKg <= 0 {
			continue
		}
		votes[ref.PackageWeightKg]++
		if votes[ref.PackageWeightKg] > winnerVotes {
			winner = ref.PackageWeightKg
			winnerVotes = votes[ref.PackageWeightKg]
		}
	}
	return winner
}

// weightForRecord resolves the per-unit weight for a plan record: by code
// first, then by name for materials recoded in SAP but unchanged on the
// reference sheet.
func (t MaterialTable) weightForRecord(rec PlanRow) float64 {
	if ref, ok := t.Lookup(rec.MaterialCode); ok && ref.WeightPerUnitKg > 0 {
		return ref.WeightPerUnitKg
	}

	name := NormalizeName(rec.MaterialName)
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		ref := t[code]
		if ref.WeightPerUnitKg <= 0 {
			continue
		}
		refName := NormalizeName(ref.Name)
		if strings.Contains(name, refName) || strings.Contains(refName, name) {
			return ref.WeightPerUnitKg
		}
	}
	return 0
}
