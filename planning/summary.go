package planning

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// SummaryItem is one product line in the daily report.
type SummaryItem struct {
	MaterialName  string
	PlannedTons   decimal.Decimal
	ProducedTons  decimal.Decimal
	ShortfallTons decimal.Decimal
	Percent       float64
}

// Summary is the daily production report: per-item figures plus totals.
// Shortfalls are floored at zero and percentages capped at 100; the
// report reads as "what is left", overproduction never shows as negative
// work or progress beyond done.
type Summary struct {
	Items          []SummaryItem
	PlannedTons    decimal.Decimal
	ProducedTons   decimal.Decimal
	ShortfallTons  decimal.Decimal
	OverallPercent float64
}

// ClampPercent caps a progress percentage into [0, 100] for reporting.
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// BuildSummary aggregates the product-line plan records into the daily
// report. Decimal arithmetic keeps the tonnage totals exact however the
// items are ordered; the same records always produce the same summary.
func BuildSummary(records []PlanRow, table MaterialTable) Summary {
	thousand := decimal.NewFromInt(1000)
	s := Summary{Items: []SummaryItem{}}

	for _, rec := range records {
		if !strings.Contains(NormalizeName(rec.MaterialName), productLineMarker) {
			continue
		}

		planned := decimal.NewFromFloat(rec.PlannedTons)
		weight := decimal.NewFromFloat(table.weightForRecord(rec))
		produced := decimal.NewFromFloat(rec.ProducedBaseUnits).Mul(weight).Div(thousand)

		shortfall := planned.Sub(produced)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}

		percent := 100.0
		if planned.IsPositive() {
			ratio, _ := produced.Div(planned).Float64()
			percent = ClampPercent(ratio * 100)
		}

		s.Items = append(s.Items, SummaryItem{
			MaterialName:  rec.MaterialName,
			PlannedTons:   planned,
			ProducedTons:  produced,
			ShortfallTons: shortfall,
			Percent:       percent,
		})
		s.PlannedTons = s.PlannedTons.Add(planned)
		s.ProducedTons = s.ProducedTons.Add(produced)
	}

	s.ShortfallTons = s.PlannedTons.Sub(s.ProducedTons)
	if s.ShortfallTons.IsNegative() {
		s.ShortfallTons = decimal.Zero
	}
	if s.PlannedTons.IsPositive() {
		ratio, _ := s.ProducedTons.Div(s.PlannedTons).Float64()
		s.OverallPercent = ClampPercent(ratio * 100)
	} else {
		s.OverallPercent = 100
	}
	return s
}

// RenderSummaryText renders the report as the plain-text card body posted
// to the Teams channel.
func RenderSummaryText(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Planejado: %s t | Produzido: %s t | Falta: %s t | Progresso Geral: %.1f%%\n\n",
		s.PlannedTons.StringFixed(2), s.ProducedTons.StringFixed(2), s.ShortfallTons.StringFixed(2), s.OverallPercent)
	b.WriteString("Itens:\n")
	for _, it := range s.Items {
		fmt.Fprintf(&b, "- %s | Planejado %s t | Produzido %s t | Falta %s t | Progresso %.1f%%\n",
			it.MaterialName, it.PlannedTons.StringFixed(2), it.ProducedTons.StringFixed(2),
			it.ShortfallTons.StringFixed(2), it.Percent)
	}
	return b.String()
}

// RenderSummaryHTML renders the report as the e-mail body. generatedAt is
// passed in pre-formatted so callers control timezone and locale.
func RenderSummaryHTML(s Summary, generatedAt string) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family:Arial,sans-serif;color:#222">`)
	b.WriteString(`<h2>Relatório de Produção</h2>`)
	fmt.Fprintf(&b, `<p>Gerado em %s</p>`, html.EscapeString(generatedAt))

	fmt.Fprintf(&b, `<p><b>Planejado:</b> %s t &nbsp; <b>Produzido:</b> %s t &nbsp; <b>Falta:</b> %s t &nbsp; <b>Progresso Geral:</b> %.1f%%</p>`,
		s.PlannedTons.StringFixed(2), s.ProducedTons.StringFixed(2), s.ShortfallTons.StringFixed(2), s.OverallPercent)

	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse">`)
	b.WriteString(`<tr style="background:#f0f0f0"><th>Material</th><th>Planejado (t)</th><th>Produzido (t)</th><th>Falta (t)</th><th>Progresso</th></tr>`)
	for _, it := range s.Items {
		fmt.Fprintf(&b, `<tr><td>%s</td><td align="right">%s</td><td align="right">%s</td><td align="right">%s</td><td align="right">%.1f%%</td></tr>`,
			html.EscapeString(it.MaterialName), it.PlannedTons.StringFixed(2), it.ProducedTons.StringFixed(2),
			it.ShortfallTons.StringFixed(2), it.Percent)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}
