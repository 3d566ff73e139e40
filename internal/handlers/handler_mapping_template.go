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

// mappingTemplateHandler handles HTTP requests related to event mapping templates.
type mappingTemplateHandler struct {
	mappingService portssvc.MappingSvcFacade
}

// newMappingTemplateHandler creates a new mappingTemplateHandler.
func newMappingTemplateHandler(ms portssvc.MappingSvcFacade) *mappingTemplateHandler {
	return &mappingTemplateHandler{
		mappingService: ms,
	}
}

// registerMappingTemplateRoutes registers routes related to mapping templates.
func registerMappingTemplateRoutes(rg *gin.RouterGroup, mappingService portssvc.MappingSvcFacade) {
	h := newMappingTemplateHandler(mappingService)

	templates := rg.Group("/mapping-templates")
	{
		templates.POST("", h.createTemplate)
		templates.GET("", h.listTemplates)
		templates.GET("/:id", h.getTemplate)
		templates.DELETE("/:id", h.deactivateTemplate)
	}
}

// createTemplate godoc
// @Summary Create a mapping template
// @Description Creates a template that translates loan lifecycle events of a given type into balanced journal lines
// @Tags mapping templates
// @Accept  json
// @Produce  json
// @Param   template body dto.CreateMappingTemplateRequest true "Template details"
// @Success 201 {object} dto.MappingTemplateResponse
// @Failure 400 {object} map[string]string "Invalid conditions, selectors or amount expressions"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create template"
// @Security BearerAuth
// @Router /mapping-templates [post]
func (h *mappingTemplateHandler) createTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateMappingTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMappingTemplate", slog.String("error", err.Error()))
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
	logger.Info("Received request to create mapping template",
		slog.String("name", req.Name),
		slog.String("event_type", string(req.EventType)),
		slog.Int("priority", req.Priority),
	)

	template, err := h.mappingService.CreateTemplate(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error creating template", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			// A line references an unknown account.
			logger.Warn("Template references missing account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		}
		return
	}

	logger.Info("Mapping template created successfully", slog.String("template_id", template.TemplateID))
	c.JSON(http.StatusCreated, dto.ToMappingTemplateResponse(template))
}

// getTemplate godoc
// @Summary Get a mapping template by ID
// @Description Retrieves a mapping template with its conditions and line specifications
// @Tags mapping templates
// @Produce  json
// @Param   id path string true "Template ID"
// @Success 200 {object} dto.MappingTemplateResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to retrieve template"
// @Security BearerAuth
// @Router /mapping-templates/{id} [get]
func (h *mappingTemplateHandler) getTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	logger = logger.With(slog.String("template_id", templateID))

	template, err := h.mappingService.GetTemplateByID(c.Request.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Template not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			logger.Error("Failed to get template from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMappingTemplateResponse(template))
}

// listTemplates godoc
// @Summary List mapping templates
// @Description Retrieves all mapping templates, active and inactive
// @Tags mapping templates
// @Produce  json
// @Success 200 {object} dto.ListMappingTemplatesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list templates"
// @Security BearerAuth
// @Router /mapping-templates [get]
func (h *mappingTemplateHandler) listTemplates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	templates, err := h.mappingService.ListTemplates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list templates from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}

	logger.Info("Mapping templates listed successfully", slog.Int("count", len(templates)))
	c.JSON(http.StatusOK, dto.ListMappingTemplatesResponse{Templates: dto.ToListMappingTemplateResponse(templates)})
}

// deactivateTemplate godoc
// @Summary Deactivate a mapping template
// @Description Marks a template inactive so the resolver stops considering it. Historical entries keep referencing it.
// @Tags mapping templates
// @Produce  json
// @Param   id path string true "Template ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 409 {object} map[string]string "Template already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate template"
// @Security BearerAuth
// @Router /mapping-templates/{id} [delete]
func (h *mappingTemplateHandler) deactivateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("template_id", templateID), slog.String("user_id", userID))
	logger.Info("Received request to deactivate mapping template")

	err := h.mappingService.DeactivateTemplate(c.Request.Context(), templateID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Template not found for deactivation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Template cannot be deactivated", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to deactivate template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate template"})
		}
		return
	}

	logger.Info("Mapping template deactivated successfully")
	c.Status(http.StatusNoContent)
}
