package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/delivery"
	"github.com/odouglasrocha/apiplano/models"
	"github.com/odouglasrocha/apiplano/planning"
	"github.com/odouglasrocha/apiplano/utils"
	"github.com/sirupsen/logrus"
)

func listRecipientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipients, err := models.GetRecipients(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar destinatários"})
			return
		}

		out := make([]gin.H, 0, len(recipients))
		for _, r := range recipients {
			out = append(out, gin.H{"id": r.ID, "alias": r.Alias})
		}
		c.JSON(http.StatusOK, out)
	}
}

func createRecipientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRecipient
		if err := c.ShouldBindJSON(&input); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "dados inválidos"})
			return
		}

		recipient, err := models.CreateRecipient(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar destinatário"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": recipient.ID, "alias": recipient.Alias})
	}
}

func emailLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		logs, err := models.GetEmailLogs(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar histórico de envios"})
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

type sendReportRequest struct {
	ToIds            []int  `json:"to_ids"`
	CcIds            []int  `json:"cc_ids"`
	BccIds           []int  `json:"bcc_ids"`
	Subject          string `json:"subject"`
	ScreenshotBase64 string `json:"screenshot_base64"`
	SendToTeams      *bool  `json:"send_to_teams"`
}

// decodeScreenshot turns a data-URL (or bare base64) dashboard capture
// into an attachment. Bad payloads are dropped, never fatal: a report
// without its screenshot still has the full table.
func decodeScreenshot(payload string) *delivery.Attachment {
	if payload == "" {
		return nil
	}

	mimeType := "image/png"
	filename := "dashboard.png"
	if strings.HasPrefix(payload, "data:") {
		cut := strings.Index(payload, ",")
		if cut < 0 {
			return nil
		}
		header := payload[:cut]
		payload = payload[cut+1:]
		if strings.Contains(header, "image/jpeg") {
			mimeType = "image/jpeg"
			filename = "dashboard.jpg"
		}
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(content) == 0 {
		return nil
	}
	return &delivery.Attachment{Filename: filename, MimeType: mimeType, Content: content}
}

// buildReport assembles the current summary from the stored plan.
func buildReport(c *gin.Context) (planning.Summary, error) {
	records, err := models.GetPlanRecords(c.Request.Context())
	if err != nil {
		return planning.Summary{}, err
	}
	rows := make([]planning.PlanRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.PlanRow())
	}
	return planning.BuildSummary(rows, config.GetMaterials()), nil
}

// sendReportHandler delivers the production report by e-mail and,
// optionally, to the Teams channel. The audit entry is written before the
// response; a delivery failure never touches plan data.
func sendReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req sendReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dados inválidos"})
			return
		}
		if len(req.ToIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "informe ao menos um destinatário"})
			return
		}

		to, err := models.DecryptRecipientEmails(c.Request.Context(), req.ToIds)
		if err != nil {
			config.LogError(logger, "email_handlers", "sendReportHandler", "decrypt to", req.ToIds, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao resolver destinatários"})
			return
		}
		cc, err := models.DecryptRecipientEmails(c.Request.Context(), req.CcIds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao resolver destinatários"})
			return
		}
		bcc, err := models.DecryptRecipientEmails(c.Request.Context(), req.BccIds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao resolver destinatários"})
			return
		}
		if len(to) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nenhum destinatário válido"})
			return
		}

		summary, err := buildReport(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar o plano"})
			return
		}

		generatedAt := time.Now().Format("02/01/2006 15:04")
		subject := req.Subject
		if subject == "" {
			subject = fmt.Sprintf("Relatório de Produção - %s", generatedAt)
		}

		msg := delivery.Message{
			Subject: subject,
			HTML:    planning.RenderSummaryHTML(summary, generatedAt),
			To:      to,
			Cc:      cc,
			Bcc:     bcc,
		}
		if att := decodeScreenshot(req.ScreenshotBase64); att != nil {
			msg.Attachments = append(msg.Attachments, *att)
		}

		messageId, sendErr := delivery.NewMailerFromEnv().Send(msg)
		if sendErr != nil {
			if logErr := models.LogEmailDelivery(c.Request.Context(), models.EmailStatusError, req.ToIds, req.CcIds, req.BccIds, "", sendErr); logErr != nil {
				config.LogError(logger, "email_handlers", "sendReportHandler", "write audit entry", nil, logErr)
			}
			config.LogError(logger, "email_handlers", "sendReportHandler", "send email", req.ToIds, sendErr)
			c.JSON(http.StatusBadGateway, gin.H{"error": "falha ao enviar e-mail"})
			return
		}

		teamsStatus := "skipped"
		webhook := delivery.NewWebhookFromEnv()
		if webhook.Configured() && (req.SendToTeams == nil || *req.SendToTeams) {
			card := delivery.Card{
				Title:    subject,
				Subtitle: "Resumo do plano de produção",
				Text:     planning.RenderSummaryText(summary),
				LinkText: "Abrir dashboard",
				LinkURL:  os.Getenv("APP_URL"),
			}
			if err := webhook.SendCard(c.Request.Context(), card); err != nil {
				config.LogError(logger, "email_handlers", "sendReportHandler", "teams webhook", nil, err)
				teamsStatus = "error"
			} else {
				teamsStatus = "success"
			}
		}

		if logErr := models.LogEmailDelivery(c.Request.Context(), models.EmailStatusSuccess, req.ToIds, req.CcIds, req.BccIds, messageId, nil); logErr != nil {
			config.LogError(logger, "email_handlers", "sendReportHandler", "write audit entry", messageId, logErr)
		}

		logger.WithFields(logrus.Fields{
			"module":     "email_handlers",
			"message_id": messageId,
			"to":         len(to),
			"teams":      teamsStatus,
		}).Info("relatório enviado")

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message_id": messageId,
			"teams":      teamsStatus,
		})
	}
}

func teamsStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"configured": delivery.NewWebhookFromEnv().Configured(),
		})
	}
}

func teamsTestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		webhook := delivery.NewWebhookFromEnv()
		if !webhook.Configured() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "webhook do Teams não configurado"})
			return
		}

		card := delivery.Card{
			Title:    "Teste de integração",
			Subtitle: "Dashboard de produção",
			Text:     "Mensagem de teste enviada em " + time.Now().Format("02/01/2006 15:04"),
		}
		if err := webhook.SendCard(c.Request.Context(), card); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
