package controllers

import (
	"net/http"
	"strconv"

	"catalyst-alerts/database"
	"catalyst-alerts/services"

	"github.com/gin-gonic/gin"
)

// HistoryController handles options price-history HTTP requests
type HistoryController struct {
	storage  *database.HistoryStorage
	averages *services.RollingAverageCalculator
	symbol   string
}

// NewHistoryController creates a new history controller
func NewHistoryController(storage *database.HistoryStorage, averages *services.RollingAverageCalculator, symbol string) *HistoryController {
	return &HistoryController{
		storage:  storage,
		averages: averages,
		symbol:   symbol,
	}
}

// HandleGetStatus reports store health: snapshot count and average runs
// GET /api/v1/history/status
func (hc *HistoryController) HandleGetStatus(c *gin.Context) {
	count, err := hc.storage.SnapshotCount(hc.symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count snapshots",
			"details": err.Error(),
		})
		return
	}

	runs, err := hc.storage.AverageRunTimes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list average runs",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":         hc.symbol,
		"snapshot_count": count,
		"average_runs":   runs,
	})
}

// HandleGetAverages returns the latest precomputed average run
// GET /api/v1/history/averages
func (hc *HistoryController) HandleGetAverages(c *gin.Context) {
	runs, err := hc.storage.AverageRunTimes()
	if err != nil || len(runs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No average runs available",
		})
		return
	}

	averages, err := hc.storage.AveragesForRun(runs[0])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch averages",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calculated_at": runs[0],
		"count":         len(averages),
		"averages":      averages,
	})
}

// HandleGetEarningsWeeks lists the recorded excluded weeks for a symbol
// GET /api/v1/history/earnings/:symbol
func (hc *HistoryController) HandleGetEarningsWeeks(c *gin.Context) {
	symbol := c.Param("symbol")

	weeks, err := hc.storage.EarningsWeeks(symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch earnings weeks",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"count":  len(weeks),
		"weeks":  weeks,
	})
}

// HandleRecompute triggers a rolling-average recompute out of schedule
// POST /api/v1/history/recompute
func (hc *HistoryController) HandleRecompute(c *gin.Context) {
	if err := hc.averages.Recompute(hc.symbol); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Recompute failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "recomputed",
		"symbol": hc.symbol,
	})
}

// HandleGetAlerts lists recent alert audit rows
// GET /api/v1/alerts?limit=20
func (hc *HistoryController) HandleGetAlerts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	records, err := hc.storage.RecentAlerts(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch alerts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(records),
		"alerts": records,
	})
}
