package handlers

import (
	"net/http"

	"gameclub_backend/internal/models"
	"gameclub_backend/internal/services"
	"gameclub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ConsumableHandler exposes the stock ledger.
type ConsumableHandler struct {
	ledgerService services.LedgerService
}

func NewConsumableHandler(ls services.LedgerService) *ConsumableHandler {
	return &ConsumableHandler{ledgerService: ls}
}

// GetConsumables lists consumables, optionally filtered by type and a name/barcode search.
func (h *ConsumableHandler) GetConsumables(c *gin.Context) {
	filters := models.ConsumableFilters{
		Type:   optionalString(c, "type"),
		Search: optionalString(c, "search"),
	}
	consumables, err := h.ledgerService.ListConsumables(c.Request.Context(), filters)
	if err != nil {
		respondLedgerError(c, err, "fetch consumables")
		return
	}
	if consumables == nil {
		consumables = []models.Consumable{}
	}
	c.JSON(http.StatusOK, consumables)
}

func (h *ConsumableHandler) GetConsumableByBarcode(c *gin.Context) {
	consumable, err := h.ledgerService.GetConsumableByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondLedgerError(c, err, "fetch consumable")
		return
	}
	c.JSON(http.StatusOK, consumable)
}

func (h *ConsumableHandler) AddConsumable(c *gin.Context) {
	var req services.CreateConsumableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	consumable, err := h.ledgerService.AddConsumable(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err, "add consumable")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "consumable": consumable})
}

// SellConsumable sells one consumable and answers with the new sale id.
func (h *ConsumableHandler) SellConsumable(c *gin.Context) {
	var req services.SellOneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	saleID, err := h.ledgerService.SellOne(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err, "sell consumable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sale_id": saleID})
}

// MultiSell sells a cart. Either every line is recorded or none is.
func (h *ConsumableHandler) MultiSell(c *gin.Context) {
	var req services.SellManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	saleID, err := h.ledgerService.SellMany(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err, "sell consumables")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sale_id": saleID})
}

func (h *ConsumableHandler) UpdateConsumable(c *gin.Context) {
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	consumable, err := h.ledgerService.AdjustStock(c.Request.Context(), req)
	if err != nil {
		respondLedgerError(c, err, "update consumable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "consumable": consumable})
}

// GetStockMoves lists the stock audit trail, newest first.
func (h *ConsumableHandler) GetStockMoves(c *gin.Context) {
	var filters models.StockMoveFilters

	if idStr := c.Query("consumable_id"); idStr != "" {
		id, err := utils.StrToInt64(idStr)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid consumable_id format.")
			return
		}
		filters.ConsumableID = &id
	}
	filters.Reason = optionalString(c, "reason")
	filters.Type = optionalString(c, "type")

	start, end, err := dateRange(c)
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	filters.StartDate, filters.EndDate = start, end

	if filters.Page, err = queryInt(c, "page", 1); err != nil {
		utils.RespondValidationFailed(c, "Invalid page format.")
		return
	}
	if filters.PageSize, err = queryInt(c, "page_size", 100); err != nil {
		utils.RespondValidationFailed(c, "Invalid page_size format.")
		return
	}

	moves, total, err := h.ledgerService.GetStockMoves(c.Request.Context(), filters)
	if err != nil {
		respondLedgerError(c, err, "fetch stock moves")
		return
	}
	if moves == nil {
		moves = []models.StockMove{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      moves,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
