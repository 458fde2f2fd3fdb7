package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/models"
	"github.com/odouglasrocha/apiplano/planning"
	"github.com/odouglasrocha/apiplano/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// readSheetRows opens an uploaded .xlsx and returns its first worksheet
// as header-keyed rows.
func readSheetRows(fileHeader *multipart.FileHeader) ([]planning.Row, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" {
		return nil, fmt.Errorf("formato não suportado: %s (envie um arquivo .xlsx)", ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, errors.New("não foi possível ler a planilha")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("planilha sem abas")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	rows := planning.RowsFromSheet(cells)
	if len(rows) == 0 {
		return nil, errors.New("planilha vazia")
	}
	return rows, nil
}

// uploadPlanHandler ingests a weekly plan sheet and replaces the active
// plan wholesale. One malformed required cell rejects the whole file.
func uploadPlanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		fileHeader, err := c.FormFile("excel")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nenhum arquivo enviado (campo excel)"})
			return
		}

		release, err := utils.AcquireUploadLock(c.Request.Context(), "plan")
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "outro upload está em andamento"})
			return
		}
		defer release()

		rows, err := readSheetRows(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		planRows, err := planning.ParsePlanRows(rows)
		if err != nil {
			var ve *planning.ValidationError
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Error()})
				return
			}
			config.LogError(logger, "plan_handlers", "uploadPlanHandler", "parse plan rows", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "falha ao processar a planilha"})
			return
		}

		records, err := models.ReplacePlan(c.Request.Context(), planRows)
		if err != nil {
			config.LogError(logger, "plan_handlers", "uploadPlanHandler", "replace plan", len(planRows), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "falha ao salvar o plano"})
			return
		}

		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"module":        "plan_handlers",
			"correlationId": correlationId,
			"file":          fileHeader.Filename,
			"records":       len(records),
		}).Info("plano de produção substituído")

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Plano atualizado com %d materiais", len(records)),
			"count":   len(records),
		})
	}
}

// updateProductionHandler ingests a daily production report and
// overwrites every produced quantity from it.
func updateProductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		fileHeader, err := c.FormFile("excel")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nenhum arquivo enviado (campo excel)"})
			return
		}

		release, err := utils.AcquireUploadLock(c.Request.Context(), "production")
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "outro upload está em andamento"})
			return
		}
		defer release()

		rows, err := readSheetRows(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		updateRows := planning.ParseUpdateRows(rows)
		totals := planning.AggregateUpdates(updateRows, config.GetMaterials())

		updated, notFound, err := models.ApplyProductionUpdate(c.Request.Context(), totals)
		if err != nil {
			config.LogError(logger, "plan_handlers", "updateProductionHandler", "apply production update", len(totals), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "falha ao aplicar produção"})
			return
		}

		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"module":         "plan_handlers",
			"correlationId":  correlationId,
			"file":           fileHeader.Filename,
			"rows":           len(updateRows),
			"materials":      len(totals),
			"atualizados":    updated,
			"naoEncontrados": notFound,
		}).Info("produção atualizada")

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"message":        fmt.Sprintf("Produção atualizada: %d materiais, %d não encontrados", updated, notFound),
			"atualizados":    updated,
			"naoEncontrados": notFound,
		})
	}
}

func listPlanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.GetPlanRecords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar o plano"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// planKpisHandler derives the dashboard figures for every plan record on
// read; nothing derived is ever stored.
func planKpisHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.GetPlanRecords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar o plano"})
			return
		}

		table := config.GetMaterials()
		kpis := make([]planning.KPI, 0, len(records))
		for _, rec := range records {
			kpis = append(kpis, planning.DeriveKPIs(rec.PlanRow(), table))
		}
		c.JSON(http.StatusOK, kpis)
	}
}

func statusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, lastUpdate, err := models.PlanStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar status"})
			return
		}

		var last *string
		if lastUpdate != nil {
			v := lastUpdate.UTC().Format(time.RFC3339)
			last = &v
		}
		c.JSON(http.StatusOK, gin.H{
			"records":     count,
			"last_update": last,
			"materials":   len(config.GetMaterials()),
			"redis":       config.GetRedisDB() != nil,
		})
	}
}
