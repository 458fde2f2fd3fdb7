// materials-audit cross-checks the active plan against the material
// reference sheet and lists every gap that degrades the dashboard:
// plan records with no reference at all, and references missing the
// factors the KPI and coverage math need.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     MATERIALS_FILE=materials.json go run ./cmd/materials-audit
//
// Exits 1 when any gap is found, so it can guard a deploy pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.LoadMaterials()
	table := config.GetMaterials()

	records, err := models.GetPlanRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load plan records: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODIGO\tMATERIAL\tPROBLEMA")

	gaps := 0
	report := func(code, name, problem string) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", code, name, problem)
		gaps++
	}

	for _, rec := range records {
		ref, ok := table.Lookup(rec.MaterialCode)
		if !ok {
			report(rec.MaterialCode, rec.MaterialName, "sem cadastro no materials.json")
			continue
		}
		if ref.WeightPerUnitKg <= 0 {
			report(rec.MaterialCode, rec.MaterialName, "sem gramagem (conversões de massa usam 1 g)")
		}
		if ref.UnitsPerBox <= 0 {
			report(rec.MaterialCode, rec.MaterialName, "sem unidades por caixa (caixas contam como 1 unidade)")
		}
		if ref.BoxesPerPallet <= 0 {
			report(rec.MaterialCode, rec.MaterialName, "sem caixas por palete (KPIs indisponíveis)")
		}
		if ref.ThroughputPerMinute <= 0 {
			report(rec.MaterialCode, rec.MaterialName, "sem PPm (estimativa de tempo indisponível)")
		}
	}

	w.Flush()
	fmt.Printf("\n%d registro(s) no plano, %d material(is) cadastrado(s), %d problema(s)\n",
		len(records), len(table), gaps)
	if gaps > 0 {
		os.Exit(1)
	}
}
