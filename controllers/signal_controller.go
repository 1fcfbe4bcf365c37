package controllers

import (
	"net/http"

	"catalyst-alerts/signals"

	"github.com/gin-gonic/gin"
)

// SignalController handles signal-detector HTTP requests
type SignalController struct {
	detectors []signals.Detector
	adSector  *signals.AdSectorDetector
}

// NewSignalController creates a new signal controller
func NewSignalController(detectors []signals.Detector, adSector *signals.AdSectorDetector) *SignalController {
	return &SignalController{
		detectors: detectors,
		adSector:  adSector,
	}
}

// HandleListDetectors describes the registered detectors
// GET /api/v1/signals
func (sc *SignalController) HandleListDetectors(c *gin.Context) {
	out := make([]gin.H, 0, len(sc.detectors))
	for _, d := range sc.detectors {
		out = append(out, gin.H{
			"name":        d.Name(),
			"description": d.Description(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(out),
		"detectors": out,
	})
}

// HandleCheckSignals runs every detector once and returns what fired
// POST /api/v1/signals/check
func (sc *SignalController) HandleCheckSignals(c *gin.Context) {
	var fired []*signals.Signal
	for _, d := range sc.detectors {
		if signal := d.Check(c.Request.Context()); signal != nil {
			fired = append(fired, signal)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(fired),
		"signals": fired,
	})
}

// HandleSectorSentiment summarizes current ad sector news sentiment
// GET /api/v1/signals/sentiment
func (sc *SignalController) HandleSectorSentiment(c *gin.Context) {
	c.JSON(http.StatusOK, sc.adSector.SectorSentiment(c.Request.Context()))
}
