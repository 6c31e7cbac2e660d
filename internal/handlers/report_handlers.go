package handlers

import (
	"net/http"

	"gameclub_backend/internal/models"
	"gameclub_backend/internal/services"
	"gameclub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetReport returns sales, revenue, profit and stock moves for the requested range.
func (h *ReportHandler) GetReport(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	filters := models.ReportFilters{
		StartDate: start,
		EndDate:   end,
		Type:      optionalString(c, "type"),
		Period:    c.Query("period"),
	}

	report, err := h.reportService.Report(c.Request.Context(), filters)
	if err != nil {
		respondLedgerError(c, err, "build report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetRevenue(c *gin.Context) {
	period := c.DefaultQuery("period", models.PeriodAll)
	revenue, err := h.reportService.Revenue(c.Request.Context(), period)
	if err != nil {
		respondLedgerError(c, err, "compute revenue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": revenue, "period": period})
}
