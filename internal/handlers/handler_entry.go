package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lendaro/loanledger/internal/apperrors"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests related to journal entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(es portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{
		entryService: es,
	}
}

// registerEntryRoutes registers routes related to journal entries.
func registerEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	h := newEntryHandler(entryService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
		entries.POST("/:id/post", h.postEntry)
		entries.POST("/:id/void", h.voidEntry)
	}
}

// createEntry godoc
// @Summary Create a journal entry
// @Description Creates a DRAFT journal entry. With post=true the entry is posted in the same request.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   post query bool false "Post the entry immediately after creating it" default(false)
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced lines"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Target period is closed"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Security BearerAuth
// @Router /entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create entry",
		slog.Time("entry_date", req.EntryDate),
		slog.String("currency_code", req.CurrencyCode),
		slog.Int("line_count", len(req.Lines)),
	)

	create := h.entryService.CreateDraft
	if c.Query("post") == "true" {
		create = h.entryService.PostDraftDirect
	}

	entry, err := create(c.Request.Context(), req, creatorUserID)
	if err != nil {
		h.writeEntryError(c, logger, err, "Failed to create entry")
		return
	}

	logger.Info("Entry created successfully", slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry by ID
// @Description Retrieves a journal entry with its lines
// @Tags entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /entries/{id} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	logger = logger.With(slog.String("entry_id", entryID))

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to get entry from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of journal entries, optionally filtered by period and status
// @Tags entries
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   periodID query string false "Filter by accounting period"
// @Param   status query string false "Filter by status (DRAFT, POSTED, VOID)"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.entryService.ListEntries(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error listing entries", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list entries from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// postEntry godoc
// @Summary Post a draft entry
// @Description Transitions a DRAFT entry to POSTED, assigning its sequence number within the period
// @Tags entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry fails posting validation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft or its period is closed"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /entries/{id}/post [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	postingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Posting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("entry_id", entryID), slog.String("posting_user_id", postingUserID))
	logger.Info("Received request to post entry")

	entry, err := h.entryService.Post(c.Request.Context(), entryID, postingUserID)
	if err != nil {
		h.writeEntryError(c, logger, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted successfully", slog.Int64("sequence_no", derefSeq(entry.SequenceNo)))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// voidEntry godoc
// @Summary Void a posted entry
// @Description Creates an offsetting entry in an open period, marks the original VOID and links the pair
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   void body dto.VoidEntryRequest true "Void reason and optional void date"
// @Success 200 {object} dto.EntryResponse "The offsetting entry"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted, already voided, or the void date falls in a closed period"
// @Failure 500 {object} map[string]string "Failed to void entry"
// @Security BearerAuth
// @Router /entries/{id}/void [post]
func (h *entryHandler) voidEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	var req dto.VoidEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for VoidEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	voidingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Voiding user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("entry_id", entryID), slog.String("voiding_user_id", voidingUserID))
	logger.Info("Received request to void entry", slog.String("reason", req.Reason))

	offset, err := h.entryService.Void(c.Request.Context(), entryID, voidingUserID, req)
	if err != nil {
		h.writeEntryError(c, logger, err, "Failed to void entry")
		return
	}

	logger.Info("Entry voided successfully", slog.String("offset_entry_id", offset.EntryID))
	c.JSON(http.StatusOK, dto.ToEntryResponse(offset))
}

// writeEntryError maps entry service errors onto HTTP responses. The posting
// engine distinguishes state conflicts from validation failures, so 409 and
// 400 stay separate.
func (h *entryHandler) writeEntryError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Entry or dependency not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrClosedPeriod):
		logger.Warn("Operation hit a closed period", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEntryNotDraft), errors.Is(err, apperrors.ErrEntryNotPosted), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Entry is in the wrong state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnbalancedEntry),
		errors.Is(err, services.ErrEntryMinLines),
		errors.Is(err, services.ErrEntryMinAccounts),
		errors.Is(err, services.ErrInvalidAccount),
		errors.Is(err, services.ErrCurrencyMismatch),
		errors.Is(err, services.ErrDescriptionMissing):
		logger.Warn("Entry validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Entry validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func derefSeq(seq *int64) int64 {
	if seq == nil {
		return 0
	}
	return *seq
}
