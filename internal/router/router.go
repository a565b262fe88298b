package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lklbridge/internal/config"
	"lklbridge/internal/dedup"
	"lklbridge/internal/fulfillment"
	"lklbridge/internal/handler"
	"lklbridge/internal/handler/api"
	"lklbridge/internal/middleware"
	"lklbridge/internal/models"
	"lklbridge/internal/payment"
	"lklbridge/internal/repository"
	"lklbridge/internal/sign"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	cfg *config.Config,
	store dedup.Store,
	notifier fulfillment.Notifier,
	logger *zap.Logger,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	orders := repository.NewOrderRepository(db)
	settings := repository.NewSettingRepository(db)
	audit := repository.NewAuditRepository(db)

	// Gateway toward the processor-facing backend; DB settings win over env.
	// Backend URL and API key are resolved once here: changing their DB rows
	// needs a restart. The callback secret and currency are re-read per
	// request by the notify handler.
	backendURL := settings.GetOr(models.SettingBackendURL, cfg.Gateway.BackendURL)
	apiKey := settings.GetOr(models.SettingAPIKey, cfg.Gateway.APIKey)
	gateway := payment.NewLakalaGateway(backendURL, apiKey)

	// Notification handler
	verifier := sign.NewVerifier(sign.MD5Scheme{}, logger)
	fulfiller := fulfillment.NewOrderFulfiller(orders, notifier, logger)
	notifyHandler := handler.NewNotifyHandler(
		handler.NotifyConfig{
			CallbackSecret:  cfg.Gateway.CallbackSecret,
			DefaultCurrency: cfg.Gateway.Currency,
			ReturnURL:       cfg.Gateway.ReturnURL,
		},
		settings,
		verifier,
		store,
		fulfiller,
		audit,
		logger,
	)

	// Processor-facing callback routes. Unauthenticated by design: the
	// notify path authenticates with the callback signature.
	gatewayGroup := e.Group("/gateway/lklpay")
	gatewayGroup.POST("/notify", notifyHandler.Notify)
	gatewayGroup.GET("/return", notifyHandler.Return)
	gatewayGroup.POST("/return", notifyHandler.Return)

	// Shop-facing API, guarded by the shared API key.
	orderHandler := api.NewOrderHandler(gateway, orders, settings, cfg.Gateway.PublicDomain, cfg.Gateway.Currency, cfg.Gateway.BackendURL, logger)
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIKeyAuth(apiKey))
	apiGroup.POST("/orders", orderHandler.Create)
	apiGroup.GET("/orders/:ref", orderHandler.Query)
	apiGroup.GET("/config", orderHandler.Config)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
