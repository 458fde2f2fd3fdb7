package models_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/models"
	"github.com/odouglasrocha/apiplano/planning"
)

// Regression: a plan upload is a full replacement, and a production
// update zeroes every record before applying the report. A material that
// vanished from today's report must read as zero, not keep stale counts.
func TestPlanReplaceAndProductionUpdate(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	first := []planning.PlanRow{
		{MaterialCode: "93000111", MaterialName: "TORCIDA BACON 45G", PlannedBoxes: 100, PlannedTons: 3},
		{MaterialCode: "93000222", MaterialName: "TORCIDA QUEIJO 70G", PlannedBoxes: 370.37, PlannedTons: 10},
	}
	if _, err := models.ReplacePlan(ctx, first); err != nil {
		t.Fatalf("ReplacePlan: %v", err)
	}

	// Replacement drops rows that are gone from the new sheet.
	second := []planning.PlanRow{
		{MaterialCode: "93000222", MaterialName: "TORCIDA QUEIJO 70G", PlannedBoxes: 400, PlannedTons: 11},
		{MaterialCode: "93000333", MaterialName: "TORCIDA CEBOLA 45G", PlannedBoxes: 50, PlannedTons: 1.5},
	}
	if _, err := models.ReplacePlan(ctx, second); err != nil {
		t.Fatalf("ReplacePlan (second): %v", err)
	}

	records, err := models.GetPlanRecords(ctx)
	if err != nil {
		t.Fatalf("GetPlanRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("after replacement: %d records, want 2", len(records))
	}
	if records[0].MaterialCode != "93000222" || records[1].MaterialCode != "93000333" {
		t.Fatalf("unexpected records after replacement: %s, %s", records[0].MaterialCode, records[1].MaterialCode)
	}
	if records[0].PlannedBoxes != 400 {
		t.Fatalf("replacement kept stale planned boxes: %v", records[0].PlannedBoxes)
	}

	// First update: both materials produce.
	updated, notFound, err := models.ApplyProductionUpdate(ctx, []planning.ProducedTotal{
		{MaterialCode: "93000222", BaseUnits: 5000},
		{MaterialCode: "93000333", BaseUnits: 300},
		{MaterialCode: "99999999", BaseUnits: 10},
	})
	if err != nil {
		t.Fatalf("ApplyProductionUpdate: %v", err)
	}
	if updated != 2 || notFound != 1 {
		t.Fatalf("updated=%d notFound=%d, want 2/1", updated, notFound)
	}

	// Second update omits 93000333: its count must drop to zero.
	if _, _, err := models.ApplyProductionUpdate(ctx, []planning.ProducedTotal{
		{MaterialCode: "93000222", BaseUnits: 7500},
	}); err != nil {
		t.Fatalf("ApplyProductionUpdate (second): %v", err)
	}

	records, err = models.GetPlanRecords(ctx)
	if err != nil {
		t.Fatalf("GetPlanRecords: %v", err)
	}
	if records[0].ProducedBaseUnits != 7500 {
		t.Fatalf("93000222 produced = %v, want 7500", records[0].ProducedBaseUnits)
	}
	if records[1].ProducedBaseUnits != 0 {
		t.Fatalf("93000333 produced = %v, want zeroed", records[1].ProducedBaseUnits)
	}

	count, lastUpdate, err := models.PlanStatus(ctx)
	if err != nil {
		t.Fatalf("PlanStatus: %v", err)
	}
	if count != 2 || lastUpdate == nil {
		t.Fatalf("PlanStatus = %d/%v, want 2 with a timestamp", count, lastUpdate)
	}
}

func TestIntermediateStockUpsert(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	if _, err := models.UpsertIntermediateStock(ctx, "bacon", 10); err != nil {
		t.Fatalf("UpsertIntermediateStock: %v", err)
	}
	// Second write for the same category updates in place.
	entry, err := models.UpsertIntermediateStock(ctx, "BACON", 25.5)
	if err != nil {
		t.Fatalf("UpsertIntermediateStock (update): %v", err)
	}
	if entry.PackageCount != 25.5 {
		t.Fatalf("package count = %v, want 25.5", entry.PackageCount)
	}

	entries, err := models.GetIntermediateStocks(ctx)
	if err != nil {
		t.Fatalf("GetIntermediateStocks: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("upsert duplicated the category: %d rows", len(entries))
	}

	if _, err := models.UpsertIntermediateStock(ctx, "PRESUNTO", 5); err == nil {
		t.Fatal("unknown category must be rejected")
	}
	if _, err := models.UpsertIntermediateStock(ctx, "BACON", -1); err == nil {
		t.Fatal("negative package count must be rejected")
	}
}

func TestRecipientEncryptionRoundTrip(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	recipient, err := models.CreateRecipient(ctx, &models.NewRecipient{
		Alias: "Supervisor Turno 1",
		Email: "turno1@example.com",
	})
	if err != nil {
		t.Fatalf("CreateRecipient: %v", err)
	}
	if strings.Contains(recipient.EmailEnc, "turno1@example.com") {
		t.Fatal("address stored in clear")
	}
	if parts := strings.Split(recipient.EmailEnc, ":"); len(parts) != 3 {
		t.Fatalf("stored format = %q, want iv:cipher:tag", recipient.EmailEnc)
	}

	emails, err := models.DecryptRecipientEmails(ctx, []int{recipient.ID})
	if err != nil {
		t.Fatalf("DecryptRecipientEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "turno1@example.com" {
		t.Fatalf("round trip = %v", emails)
	}

	if err := models.LogEmailDelivery(ctx, models.EmailStatusSuccess, []int{recipient.ID}, nil, nil, "msg-1", nil); err != nil {
		t.Fatalf("LogEmailDelivery: %v", err)
	}
	logs, err := models.GetEmailLogs(ctx, 10)
	if err != nil {
		t.Fatalf("GetEmailLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != models.EmailStatusSuccess {
		t.Fatalf("audit log = %+v", logs)
	}
}

func setupIntegrationDB(t *testing.T) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "apiplano_test")
	t.Setenv("RECIPIENTS_SECRET", base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")))

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("apiplano-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=apiplano_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
