package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// anomalyHandler handles HTTP requests related to anomaly detection.
type anomalyHandler struct {
	anomalyService portssvc.AnomalySvcFacade
}

// newAnomalyHandler creates a new anomalyHandler.
func newAnomalyHandler(as portssvc.AnomalySvcFacade) *anomalyHandler {
	return &anomalyHandler{
		anomalyService: as,
	}
}

// registerAnomalyRoutes registers routes related to anomaly detection.
func registerAnomalyRoutes(rg *gin.RouterGroup, anomalyService portssvc.AnomalySvcFacade) {
	h := newAnomalyHandler(anomalyService)

	anomalies := rg.Group("/anomalies")
	{
		anomalies.POST("/scan", h.scan)
		anomalies.GET("", h.listResults)
		anomalies.GET("/entry/:id", h.getResultsForEntry)
	}
}

// scan godoc
// @Summary Run the anomaly detector
// @Description Examines POSTED entries not yet scored and flags the ones matching the detection heuristics. Detection never mutates entries.
// @Tags anomalies
// @Produce  json
// @Success 200 {object} dto.ScanResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Anomaly scan failed"
// @Security BearerAuth
// @Router /anomalies/scan [post]
func (h *anomalyHandler) scan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to run anomaly scan")

	scanned, flagged, err := h.anomalyService.Scan(c.Request.Context())
	if err != nil {
		logger.Error("Anomaly scan failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Anomaly scan failed"})
		return
	}

	logger.Info("Anomaly scan finished", slog.Int("scanned", scanned), slog.Int("flagged", flagged))
	c.JSON(http.StatusOK, dto.ScanResponse{Scanned: scanned, Flagged: flagged})
}

// listResults godoc
// @Summary List anomaly results
// @Description Retrieves a paginated list of anomaly results, optionally filtered by type
// @Tags anomalies
// @Produce  json
// @Param   type query string false "Filter by anomaly type (AMOUNT_OUTLIER, ROUND_AMOUNT, OFF_HOURS, RAPID_VOID)"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAnomalyResultsResponse
// @Failure 400 {object} map[string]string "Unknown anomaly type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list anomaly results"
// @Security BearerAuth
// @Router /anomalies [get]
func (h *anomalyHandler) listResults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAnomalyResultsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAnomalyResults", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var anomalyType *domain.AnomalyType
	if params.Type != nil && *params.Type != "" {
		t := domain.AnomalyType(*params.Type)
		switch t {
		case domain.AnomalyAmountOutlier, domain.AnomalyRoundAmount, domain.AnomalyOffHours, domain.AnomalyRapidVoid:
			anomalyType = &t
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown anomaly type: " + *params.Type})
			return
		}
	}

	results, err := h.anomalyService.ListResults(c.Request.Context(), anomalyType, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list anomaly results", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list anomaly results"})
		return
	}

	logger.Info("Anomaly results listed successfully", slog.Int("count", len(results)))
	c.JSON(http.StatusOK, dto.ListAnomalyResultsResponse{Results: dto.ToListAnomalyResultResponse(results)})
}

// getResultsForEntry godoc
// @Summary Get anomaly results for an entry
// @Description Retrieves every anomaly result recorded against a single journal entry
// @Tags anomalies
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.ListAnomalyResultsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve anomaly results"
// @Security BearerAuth
// @Router /anomalies/entry/{id} [get]
func (h *anomalyHandler) getResultsForEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	logger = logger.With(slog.String("entry_id", entryID))

	results, err := h.anomalyService.GetResultsForEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Entry not found for anomaly results")
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to get anomaly results for entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve anomaly results"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListAnomalyResultsResponse{Results: dto.ToListAnomalyResultResponse(results)})
}
