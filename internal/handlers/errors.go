package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gameclub_backend/internal/services"
	"gameclub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// respondLedgerError maps ledger and report service errors to API errors.
func respondLedgerError(c *gin.Context, err error, op string) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInsufficientStock,
			"Insufficient stock for "+stockErr.Name+".", err.Error()).
			WithMeta("consumable_id", stockErr.ConsumableID).
			WithMeta("requested", stockErr.Requested).
			WithMeta("available", stockErr.Available))
	case errors.Is(err, services.ErrValidation):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrConsumableNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Consumable not found.", err.Error()))
	default:
		utils.LogError(err, op+": unexpected service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+op+".", "Internal error"))
	}
}

func optionalString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// dateRange parses start_date and end_date (YYYY-MM-DD). The end date is inclusive
// on the wire and returned as an exclusive bound (next midnight).
func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if s := c.Query("start_date"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return nil, nil, errors.New("invalid start_date format, expected YYYY-MM-DD")
		}
		start = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return nil, nil, errors.New("invalid end_date format, expected YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
