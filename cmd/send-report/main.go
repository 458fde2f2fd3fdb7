// send-report builds the current production summary from the database
// and delivers it from the command line, for cron-driven daily sends.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     go run ./cmd/send-report -teams -to=turno1@example.com,turno2@example.com
//
// -teams posts the summary card to TEAMS_WEBHOOK_URL; -to sends the HTML
// report over SMTP_* to the given comma-separated addresses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/delivery"
	"github.com/odouglasrocha/apiplano/models"
	"github.com/odouglasrocha/apiplano/planning"
	"github.com/odouglasrocha/apiplano/utils"
)

func main() {
	toTeams := flag.Bool("teams", false, "post the summary to the Teams webhook")
	toEmails := flag.String("to", "", "comma-separated e-mail addresses")
	subject := flag.String("subject", "", "e-mail subject (default: dated report title)")
	flag.Parse()

	if !*toTeams && *toEmails == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -teams and/or -to=addr1,addr2")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.LoadMaterials()

	records, err := models.GetPlanRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load plan records: %v\n", err)
		os.Exit(1)
	}
	rows := make([]planning.PlanRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.PlanRow())
	}

	summary := planning.BuildSummary(rows, config.GetMaterials())
	generatedAt := time.Now().Format("02/01/2006 15:04")
	title := *subject
	if title == "" {
		title = fmt.Sprintf("Relatório de Produção - %s", generatedAt)
	}

	exitCode := 0

	if *toTeams {
		webhook := delivery.NewWebhookFromEnv()
		if !webhook.Configured() {
			fmt.Fprintln(os.Stderr, "TEAMS_WEBHOOK_URL is not set")
			exitCode = 1
		} else if err := webhook.SendCard(ctx, delivery.Card{
			Title:    title,
			Subtitle: "Resumo do plano de produção",
			Text:     planning.RenderSummaryText(summary),
			LinkText: "Abrir dashboard",
			LinkURL:  os.Getenv("APP_URL"),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "teams delivery failed: %v\n", err)
			exitCode = 1
		} else {
			fmt.Println("posted summary to Teams")
		}
	}

	if *toEmails != "" {
		addresses := splitAddresses(*toEmails)
		if len(addresses) == 0 {
			fmt.Fprintln(os.Stderr, "-to given but no usable addresses")
			os.Exit(2)
		}
		messageId, err := delivery.NewMailerFromEnv().Send(delivery.Message{
			Subject: title,
			HTML:    planning.RenderSummaryHTML(summary, generatedAt),
			To:      addresses,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "e-mail delivery failed: %v\n", err)
			exitCode = 1
		} else {
			fmt.Printf("sent report to %d address(es), message_id=%s\n", len(addresses), messageId)
		}
	}

	os.Exit(exitCode)
}

func splitAddresses(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !utils.IsValidEmail(p) {
			fmt.Fprintf(os.Stderr, "skipping invalid address %q\n", p)
			continue
		}
		out = append(out, p)
	}
	return out
}
