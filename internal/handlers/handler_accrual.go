package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lendaro/loanledger/internal/apperrors"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// accrualHandler handles HTTP requests related to interest accrual batches.
type accrualHandler struct {
	accrualService portssvc.AccrualSvcFacade
}

// newAccrualHandler creates a new accrualHandler.
func newAccrualHandler(as portssvc.AccrualSvcFacade) *accrualHandler {
	return &accrualHandler{
		accrualService: as,
	}
}

// registerAccrualRoutes registers routes related to accrual batches.
func registerAccrualRoutes(rg *gin.RouterGroup, accrualService portssvc.AccrualSvcFacade) {
	h := newAccrualHandler(accrualService)

	accruals := rg.Group("/accruals")
	{
		accruals.POST("/run", h.runAccrual)
		accruals.GET("", h.listBatches)
		accruals.GET("/:id", h.getBatch)
		accruals.POST("/:id/resume", h.resumeBatch)
	}
}

// runAccrual godoc
// @Summary Run an interest accrual batch
// @Description Accrues daily interest for every accruing loan over [startDate, endDate), posting one entry per loan-day. Re-running a completed or running range is rejected.
// @Tags accruals
// @Accept  json
// @Produce  json
// @Param   run body dto.RunAccrualRequest true "Accrual date range"
// @Success 201 {object} dto.AccrualBatchResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A batch already covers part of this range, or the posting period is closed"
// @Failure 500 {object} map[string]string "Accrual run failed"
// @Security BearerAuth
// @Router /accruals/run [post]
func (h *accrualHandler) runAccrual(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RunAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunAccrual", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to run accrual batch",
		slog.Time("start_date", req.StartDate),
		slog.Time("end_date", req.EndDate),
	)

	batch, err := h.accrualService.Run(c.Request.Context(), req.StartDate, req.EndDate, userID)
	if err != nil {
		h.writeAccrualError(c, logger, err, "Accrual run failed")
		return
	}

	logger.Info("Accrual batch finished",
		slog.String("batch_id", batch.BatchID),
		slog.String("status", string(batch.Status)),
		slog.Int("entry_count", batch.EntryCount),
	)
	c.JSON(http.StatusCreated, dto.ToAccrualBatchResponse(batch))
}

// resumeBatch godoc
// @Summary Resume an incomplete accrual batch
// @Description Picks up an INCOMPLETE batch and processes only the loan-days that have no committed entry yet
// @Tags accruals
// @Produce  json
// @Param   id path string true "Batch ID"
// @Success 200 {object} dto.AccrualBatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch is not resumable"
// @Failure 500 {object} map[string]string "Accrual resume failed"
// @Security BearerAuth
// @Router /accruals/{id}/resume [post]
func (h *accrualHandler) resumeBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("batch_id", batchID), slog.String("user_id", userID))
	logger.Info("Received request to resume accrual batch")

	batch, err := h.accrualService.Resume(c.Request.Context(), batchID, userID)
	if err != nil {
		h.writeAccrualError(c, logger, err, "Accrual resume failed")
		return
	}

	logger.Info("Accrual batch resumed",
		slog.String("status", string(batch.Status)),
		slog.Int("entry_count", batch.EntryCount),
	)
	c.JSON(http.StatusOK, dto.ToAccrualBatchResponse(batch))
}

// getBatch godoc
// @Summary Get an accrual batch by ID
// @Description Retrieves an accrual batch with its status and entry count
// @Tags accruals
// @Produce  json
// @Param   id path string true "Batch ID"
// @Success 200 {object} dto.AccrualBatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 500 {object} map[string]string "Failed to retrieve batch"
// @Security BearerAuth
// @Router /accruals/{id} [get]
func (h *accrualHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	batch, err := h.accrualService.GetBatchByID(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Accrual batch not found", slog.String("batch_id", batchID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		} else {
			logger.Error("Failed to get accrual batch", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve batch"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccrualBatchResponse(batch))
}

// listBatches godoc
// @Summary List accrual batches
// @Description Retrieves a paginated list of accrual batches, most recent first
// @Tags accruals
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAccrualBatchesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list batches"
// @Security BearerAuth
// @Router /accruals [get]
func (h *accrualHandler) listBatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAccrualBatchesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListBatches", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	batches, err := h.accrualService.ListBatches(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list accrual batches", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list batches"})
		return
	}

	logger.Info("Accrual batches listed successfully", slog.Int("count", len(batches)))
	c.JSON(http.StatusOK, dto.ListAccrualBatchesResponse{Batches: dto.ToListAccrualBatchResponse(batches)})
}

// writeAccrualError maps accrual service errors onto HTTP responses.
func (h *accrualHandler) writeAccrualError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Accrual batch not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
	case errors.Is(err, apperrors.ErrDuplicateBatch):
		logger.Warn("Accrual range already covered", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrClosedPeriod):
		logger.Warn("Accrual hit a state conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Accrual request validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
