package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to ledger reports. Every
// report flows through the export service, so the same endpoint serves JSON,
// CSV and XML depending on the format parameter.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
	exportService    portssvc.ExportSvc
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade, es portssvc.ExportSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		exportService:    es,
	}
}

// registerReportingRoutes registers routes related to ledger reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade, exportService portssvc.ExportSvc) {
	h := newReportingHandler(reportingService, exportService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/account-activity/:accountID", h.getAccountActivity)
		reports.GET("/period-summary", h.getPeriodSummary)
	}
}

// getTrialBalance godoc
// @Summary Generate the trial balance report
// @Description Generates a trial balance as of a date, with summary accounts rolled up from their subtrees. Format selects json, csv or xml output.
// @Tags reports
// @Produce json
// @Produce text/csv
// @Produce application/xml
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param format query string false "Output format (json, csv, xml)" default(json)
// @Success 200 {object} nil "Rendered report"
// @Failure 400 {object} map[string]string "Invalid input or unsupported format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for TrialBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = *params.AsOf
	}

	logger = logger.With(slog.Time("as_of", asOf), slog.String("format", params.Format))
	logger.Info("Received request to generate trial balance report")

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to generate trial balance report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance report"})
		return
	}

	h.renderReport(c, logger, report, params.Format)
}

// getAccountActivity godoc
// @Summary Generate the account activity report
// @Description Generates the posted activity of one account over a date range, with running balances. Format selects json, csv or xml output.
// @Tags reports
// @Produce json
// @Produce text/csv
// @Produce application/xml
// @Param accountID path string true "Account ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "Output format (json, csv, xml)" default(json)
// @Success 200 {object} nil "Rendered report"
// @Failure 400 {object} map[string]string "Invalid input or unsupported format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/account-activity/{accountID} [get]
func (h *reportingHandler) getAccountActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.AccountActivityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for AccountActivity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	if params.From.After(params.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before or equal to to"})
		return
	}

	logger = logger.With(
		slog.String("account_id", accountID),
		slog.Time("from", params.From),
		slog.Time("to", params.To),
		slog.String("format", params.Format),
	)
	logger.Info("Received request to generate account activity report")

	report, err := h.reportingService.AccountActivity(c.Request.Context(), accountID, params.From, params.To)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for activity report")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to generate account activity report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate account activity report"})
		}
		return
	}

	h.renderReport(c, logger, report, params.Format)
}

// getPeriodSummary godoc
// @Summary Generate the period summary report
// @Description Generates per-period posted totals across all accounting periods. Format selects json, csv or xml output.
// @Tags reports
// @Produce json
// @Produce text/csv
// @Produce application/xml
// @Param format query string false "Output format (json, csv, xml)" default(json)
// @Success 200 {object} nil "Rendered report"
// @Failure 400 {object} map[string]string "Unsupported format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/period-summary [get]
func (h *reportingHandler) getPeriodSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.PeriodSummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for PeriodSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("format", params.Format))
	logger.Info("Received request to generate period summary report")

	report, err := h.reportingService.PeriodSummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to generate period summary report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate period summary report"})
		return
	}

	h.renderReport(c, logger, report, params.Format)
}

// renderReport runs the report through the export service and writes the raw
// bytes with the format's content type.
func (h *reportingHandler) renderReport(c *gin.Context, logger *slog.Logger, report *domain.ReportData, format string) {
	body, contentType, err := h.exportService.Render(report, format)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			logger.Warn("Unsupported report format requested", slog.String("format", format))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to render report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	logger.Info("Report rendered successfully", slog.Int("row_count", len(report.Rows)), slog.Int("bytes", len(body)))
	c.Data(http.StatusOK, contentType, body)
}
