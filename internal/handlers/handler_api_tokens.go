package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lendaro/loanledger/internal/apperrors"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/handlers/dto"
	"github.com/lendaro/loanledger/internal/middleware"
)

// APIErrorResponse represents a generic error response for API token operations
// @Description Generic error response containing a message describing the error
type APIErrorResponse struct {
	// Message contains the error message
	Message string `json:"message" example:"An error occurred"`
}

// apiTokenHandler handles HTTP requests for API token operations
type apiTokenHandler struct {
	tokenService portssvc.APITokenSvc
}

func newAPITokenHandler(tokenService portssvc.APITokenSvc) *apiTokenHandler {
	return &apiTokenHandler{tokenService: tokenService}
}

// registerAPITokenRoutes registers the API token routes
func registerAPITokenRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc) {
	handler := newAPITokenHandler(tokenService)

	tokens := rg.Group("/tokens")
	{
		tokens.POST("", handler.createToken)
		tokens.GET("", handler.listTokens)
		tokens.DELETE("/:id", handler.revokeToken)
		tokens.DELETE("", handler.revokeAllTokens)
	}
}

// createToken handles the creation of a new API token
// @Summary Create a new API token
// @Description Creates a new API token for the authenticated user. The token value is shown only once, at creation.
// @Description Use it for API authentication via the Authorization header: `Authorization: Bearer llt_...`
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAPITokenRequest true "Token creation details"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} APIErrorResponse
// @Failure 401 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /tokens [post]
func (h *apiTokenHandler) createToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIErrorResponse{Message: "Unauthorized"})
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Message: "Invalid request body: " + err.Error()})
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresIn != nil {
		if *req.ExpiresIn <= 0 {
			c.JSON(http.StatusBadRequest, APIErrorResponse{Message: "expiresIn must be a positive number of seconds"})
			return
		}
		d := time.Duration(*req.ExpiresIn) * time.Second
		expiresIn = &d
	}

	tokenStr, token, err := h.tokenService.CreateToken(c.Request.Context(), creatorUserID, req.Name, expiresIn)
	if err != nil {
		logger.Error("Failed to create API token", slog.Any("error", err), slog.String("user_id", creatorUserID))
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Message: "Failed to create token: " + err.Error()})
		return
	}

	logger.Info("API token created", slog.String("token_id", token.ID), slog.String("user_id", creatorUserID))
	c.JSON(http.StatusCreated, dto.ToCreateAPITokenResponse(tokenStr, *token))
}

// listTokens handles listing all API tokens for the authenticated user
// @Summary List all API tokens
// @Description Lists all API tokens for the authenticated user. Only metadata is returned, never the token values.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListAPITokensResponse
// @Failure 401 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /tokens [get]
func (h *apiTokenHandler) listTokens(c *gin.Context) {
	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIErrorResponse{Message: "Unauthorized"})
		return
	}

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), creatorUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Message: "Failed to list tokens: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToAPITokenResponseList(tokens))
}

// revokeToken handles revoking a specific API token
// @Summary Revoke an API token
// @Description Revokes a specific API token by ID. The token is invalidated immediately.
// @Description Only the token owner can revoke their own tokens.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param id path string true "Token ID (UUID format)" format(uuid)
// @Success 204 "Token revoked successfully"
// @Failure 400 {object} APIErrorResponse
// @Failure 401 {object} APIErrorResponse
// @Failure 404 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /tokens/{id} [delete]
func (h *apiTokenHandler) revokeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIErrorResponse{Message: "Unauthorized"})
		return
	}

	tokenID := c.Param("id")
	if _, err := uuid.Parse(tokenID); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Message: "Invalid token ID"})
		return
	}

	if err := h.tokenService.RevokeToken(c.Request.Context(), creatorUserID, tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, APIErrorResponse{Message: "Token not found"})
			return
		}
		logger.Error("Failed to revoke API token", slog.Any("error", err), slog.String("token_id", tokenID))
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Message: "Failed to revoke token: " + err.Error()})
		return
	}

	logger.Info("API token revoked", slog.String("token_id", tokenID), slog.String("user_id", creatorUserID))
	c.Status(http.StatusNoContent)
}

// revokeAllTokens handles revoking all API tokens for the authenticated user
// @Summary Revoke all API tokens
// @Description Revokes every API token belonging to the authenticated user. All of them are invalidated immediately,
// @Description so a new token must be created for further API access.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 204 "All tokens revoked successfully"
// @Failure 401 {object} APIErrorResponse
// @Failure 500 {object} APIErrorResponse
// @Router /tokens [delete]
func (h *apiTokenHandler) revokeAllTokens(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIErrorResponse{Message: "Unauthorized"})
		return
	}

	if err := h.tokenService.RevokeAllTokens(c.Request.Context(), creatorUserID); err != nil {
		logger.Error("Failed to revoke all API tokens", slog.Any("error", err), slog.String("user_id", creatorUserID))
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Message: "Failed to revoke tokens: " + err.Error()})
		return
	}

	logger.Info("All API tokens revoked", slog.String("user_id", creatorUserID))
	c.Status(http.StatusNoContent)
}
