package router

import (
	"gameclub_backend/internal/handlers"
	"gameclub_backend/internal/middleware"
	"gameclub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
	group.POST("/refresh-token", authHandler.RefreshToken)
}

// SetupAuthenticatedAuthRoutes expects a group already behind AuthMiddleware.
// Registration is admin-only.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/register", middleware.RoleAuthMiddleware(models.RoleAdmin), authHandler.RegisterUser)
}

// SetupConsumableRoutes sets up the consumable, sale and report routes.
func SetupConsumableRoutes(authenticatedGroup *gin.RouterGroup, h *handlers.ConsumableHandler, rh *handlers.ReportHandler) {
	consumableRoutes := authenticatedGroup.Group("/consumables")
	consumableRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		consumableRoutes.GET("", h.GetConsumables)
		consumableRoutes.GET("/barcode/:barcode", h.GetConsumableByBarcode)
		consumableRoutes.POST("/sell", h.SellConsumable)
		consumableRoutes.POST("/multi-sell", h.MultiSell)
		consumableRoutes.GET("/stock-moves", h.GetStockMoves)
		consumableRoutes.GET("/report", rh.GetReport)
		consumableRoutes.GET("/revenue", rh.GetRevenue)

		adminOnly := middleware.RoleAuthMiddleware(models.RoleAdmin)
		consumableRoutes.POST("", adminOnly, h.AddConsumable)
		consumableRoutes.PUT("/update", adminOnly, h.UpdateConsumable)
	}
}

func SetupEventRoutes(authenticatedGroup *gin.RouterGroup, eh *handlers.EventHandler) {
	authenticatedGroup.GET("/events", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), eh.Stream)
}
