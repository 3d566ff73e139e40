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

// loanHandler handles HTTP requests related to loans and their lifecycle.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

// newLoanHandler creates a new loanHandler.
func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{
		loanService: ls,
	}
}

// registerLoanRoutes registers routes related to loans.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("", h.listLoans)
		loans.GET("/:id", h.getLoan)
		loans.GET("/:id/events", h.listLoanEvents)
		loans.POST("/:id/disburse", h.disburseLoan)
		loans.POST("/:id/repayments", h.recordRepayment)
		loans.POST("/:id/fees", h.chargeFee)
		loans.POST("/:id/write-off", h.writeOffLoan)
	}
}

// createLoan godoc
// @Summary Register a loan
// @Description Registers a new loan in PENDING status. No ledger entry is posted until disbursement.
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loan body dto.CreateLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Reference code already in use"
// @Failure 500 {object} map[string]string "Failed to create loan"
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLoan", slog.String("error", err.Error()))
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
	logger.Info("Received request to create loan",
		slog.String("reference_code", req.ReferenceCode),
		slog.String("currency_code", req.CurrencyCode),
	)

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error creating loan", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			logger.Warn("Loan reference code already in use", slog.String("reference_code", req.ReferenceCode))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			// Unknown currency.
			logger.Warn("Dependency not found creating loan", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create loan in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create loan"})
		}
		return
	}

	logger.Info("Loan created successfully", slog.String("loan_id", loan.LoanID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// getLoan godoc
// @Summary Get a loan by ID
// @Description Retrieves details for a specific loan
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 500 {object} map[string]string "Failed to retrieve loan"
// @Security BearerAuth
// @Router /loans/{id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	logger = logger.With(slog.String("loan_id", loanID))

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Loan not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to get loan from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve loan"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// listLoans godoc
// @Summary List loans
// @Description Retrieves a paginated list of loans
// @Tags loans
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListLoansResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list loans"
// @Security BearerAuth
// @Router /loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListLoans", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	loans, err := h.loanService.ListLoans(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list loans from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list loans"})
		return
	}

	logger.Info("Loans listed successfully", slog.Int("count", len(loans)))
	c.JSON(http.StatusOK, dto.ListLoansResponse{Loans: dto.ToListLoanResponse(loans)})
}

// listLoanEvents godoc
// @Summary List lifecycle events for a loan
// @Description Retrieves the lifecycle events of a loan in occurrence order, each linked to its posted entry
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.ListLoanEventsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 500 {object} map[string]string "Failed to list loan events"
// @Security BearerAuth
// @Router /loans/{id}/events [get]
func (h *loanHandler) listLoanEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	logger = logger.With(slog.String("loan_id", loanID))

	events, err := h.loanService.ListLoanEvents(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Loan not found for event listing")
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to list loan events", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list loan events"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListLoanEventsResponse{Events: dto.ToListLoanEventResponse(events)})
}

// disburseLoan godoc
// @Summary Disburse a loan
// @Description Activates a PENDING loan and posts the disbursement entry through the mapping engine
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Loan is not pending, or the posting period is closed"
// @Failure 422 {object} map[string]string "No mapping template matches the disbursement event"
// @Failure 500 {object} map[string]string "Failed to disburse loan"
// @Security BearerAuth
// @Router /loans/{id}/disburse [post]
func (h *loanHandler) disburseLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_id", loanID), slog.String("user_id", userID))
	logger.Info("Received request to disburse loan")

	event, err := h.loanService.Disburse(c.Request.Context(), loanID, userID)
	if err != nil {
		h.writeLoanError(c, logger, err, "Failed to disburse loan")
		return
	}

	logger.Info("Loan disbursed successfully", slog.String("event_id", event.EventID))
	c.JSON(http.StatusOK, dto.ToLoanEventResponse(event))
}

// recordRepayment godoc
// @Summary Record a loan repayment
// @Description Reduces outstanding principal and posts the repayment entry through the mapping engine
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   id path string true "Loan ID"
// @Param   payment body dto.LoanPaymentRequest true "Repayment details"
// @Success 200 {object} dto.LoanEventResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Loan is not active, or the posting period is closed"
// @Failure 422 {object} map[string]string "No mapping template matches the repayment event"
// @Failure 500 {object} map[string]string "Failed to record repayment"
// @Security BearerAuth
// @Router /loans/{id}/repayments [post]
func (h *loanHandler) recordRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	var req dto.LoanPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordRepayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_id", loanID), slog.String("user_id", userID))
	logger.Info("Received request to record repayment", slog.Any("amount", req.Amount))

	event, err := h.loanService.RecordRepayment(c.Request.Context(), loanID, req, userID)
	if err != nil {
		h.writeLoanError(c, logger, err, "Failed to record repayment")
		return
	}

	logger.Info("Repayment recorded successfully", slog.String("event_id", event.EventID))
	c.JSON(http.StatusOK, dto.ToLoanEventResponse(event))
}

// chargeFee godoc
// @Summary Charge a fee against a loan
// @Description Posts a fee entry against the loan through the mapping engine
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   id path string true "Loan ID"
// @Param   fee body dto.LoanFeeRequest true "Fee details"
// @Success 200 {object} dto.LoanEventResponse
// @Failure 400 {object} map[string]string "Invalid amount or fee kind"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Loan is not active, or the posting period is closed"
// @Failure 422 {object} map[string]string "No mapping template matches the fee event"
// @Failure 500 {object} map[string]string "Failed to charge fee"
// @Security BearerAuth
// @Router /loans/{id}/fees [post]
func (h *loanHandler) chargeFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	var req dto.LoanFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChargeFee", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_id", loanID), slog.String("user_id", userID))
	logger.Info("Received request to charge fee", slog.Any("amount", req.Amount), slog.String("fee_kind", req.FeeKind))

	event, err := h.loanService.ChargeFee(c.Request.Context(), loanID, req, userID)
	if err != nil {
		h.writeLoanError(c, logger, err, "Failed to charge fee")
		return
	}

	logger.Info("Fee charged successfully", slog.String("event_id", event.EventID))
	c.JSON(http.StatusOK, dto.ToLoanEventResponse(event))
}

// writeOffLoan godoc
// @Summary Write off a loan
// @Description Terminates the loan and posts the write-off entry for the remaining outstanding principal
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Loan not found"
// @Failure 409 {object} map[string]string "Loan is not active, or the posting period is closed"
// @Failure 422 {object} map[string]string "No mapping template matches the write-off event"
// @Failure 500 {object} map[string]string "Failed to write off loan"
// @Security BearerAuth
// @Router /loans/{id}/write-off [post]
func (h *loanHandler) writeOffLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_id", loanID), slog.String("user_id", userID))
	logger.Info("Received request to write off loan")

	event, err := h.loanService.WriteOff(c.Request.Context(), loanID, userID)
	if err != nil {
		h.writeLoanError(c, logger, err, "Failed to write off loan")
		return
	}

	logger.Info("Loan written off successfully", slog.String("event_id", event.EventID))
	c.JSON(http.StatusOK, dto.ToLoanEventResponse(event))
}

// writeLoanError maps loan lifecycle errors onto HTTP responses. An event that
// no template can translate is 422: the request was well formed but the ledger
// configuration cannot absorb it.
func (h *loanHandler) writeLoanError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Loan not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
	case errors.Is(err, services.ErrNoMatchingTemplate):
		logger.Warn("No mapping template for loan event", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLoanNotPending), errors.Is(err, services.ErrLoanNotActive):
		logger.Warn("Loan is in the wrong state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrClosedPeriod):
		logger.Warn("Posting period is closed", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Loan request validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
