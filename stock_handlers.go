package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/models"
	"github.com/odouglasrocha/apiplano/planning"
)

func listIntermediateStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetIntermediateStocks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar estoque intermediário"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categorias": planning.CategoryKeys(),
			"estoques":   entries,
		})
	}
}

type stockUpdateRequest struct {
	QtdPacotes *float64 `json:"qtd_pacotes" binding:"required"`
}

func upsertIntermediateStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "qtd_pacotes é obrigatório"})
			return
		}

		entry, err := models.UpsertIntermediateStock(c.Request.Context(), c.Param("categoria"), *req.QtdPacotes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

// coverageHandler balances counted aroma stock against the remaining
// demand of the active plan.
func coverageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := models.GetPlanRecords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar o plano"})
			return
		}
		stock, err := models.StockByCategory(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar estoque intermediário"})
			return
		}

		rows := make([]planning.PlanRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.PlanRow())
		}
		c.JSON(http.StatusOK, planning.CoverageReport(rows, stock, config.GetMaterials()))
	}
}
