package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"logistics-admin-service/api/handlers"
	"logistics-admin-service/api/middleware"
	"logistics-admin-service/config"
)

// Dependencies are what the router hands to its handlers.
type Dependencies struct {
	Service handlers.ShipmentService
	Feed    handlers.ChangeFeed
	Health  func(ctx context.Context) error
	Logger  *zap.Logger
}

func NewRouter(cfg *config.HTTPConfig, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	shipmentHandler := handlers.NewShipmentHandler(deps.Service, deps.Logger)
	trackingHandler := handlers.NewTrackingHandler(deps.Service, deps.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Service, deps.Logger)
	eventsHandler := handlers.NewEventsHandler(deps.Feed, deps.Logger)

	router.GET("/healthz", handlers.HealthCheck(deps.Health))

	public := router.Group("/api")
	{
		public.GET("/track/:trackingNumber", trackingHandler.Track)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg.AdminJWTSecret))
	{
		admin.GET("/tracking-numbers/next", trackingHandler.NextTrackingNumber)
		admin.POST("/tracking-numbers/validate", trackingHandler.ValidateTrackingNumber)

		shipments := admin.Group("/shipments")
		{
			shipments.GET("", shipmentHandler.ListShipments)
			shipments.POST("", shipmentHandler.CreateShipment)
			shipments.GET("/:id", shipmentHandler.GetShipment)
			shipments.PUT("/:id", shipmentHandler.UpdateShipment)
			shipments.DELETE("/:id", shipmentHandler.DeleteShipment)
			shipments.POST("/:id/delay", shipmentHandler.MarkDelayed)
			shipments.POST("/:id/deliver", shipmentHandler.MarkDelivered)
			shipments.PUT("/:id/delivery-date", shipmentHandler.UpdateDeliveryDate)
			shipments.PUT("/:id/status", shipmentHandler.UpdateStatus)
		}

		admin.GET("/analytics", analyticsHandler.GetAnalytics)
		admin.GET("/events", eventsHandler.Stream)
	}

	return router
}
