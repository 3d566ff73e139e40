package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/lendaro/loanledger/cmd/docs"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/middleware"
	"github.com/lendaro/loanledger/internal/platform/config"
)

// RegisterRoutes wires every route group onto the engine. Health, home,
// auth and swagger are public; everything under /api/v1 requires auth.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	registerAuthRoutes(r, cfg, services)
	registerGoogleOAuthRoutes(r, cfg, services)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes groups the authenticated API under /api/v1 and hands each
// entity's routes to its own handler file.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User)
	registerCurrencyRoutes(v1, services.Currency)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerAccountRoutes(v1, services.Account, services.Entry)
	registerEntryRoutes(v1, services.Entry)
	registerPeriodRoutes(v1, services.Period)
	registerMappingTemplateRoutes(v1, services.Mapping)
	registerLoanRoutes(v1, services.Loan)
	registerAccrualRoutes(v1, services.Accrual)
	registerAnomalyRoutes(v1, services.Anomaly)
	registerReportingRoutes(v1, services.Reporting, services.Export)
	registerAPITokenRoutes(v1, services.APIToken)
}

// setupSwaggerRoutes serves the generated API docs outside production.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
