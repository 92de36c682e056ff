package routes

import (
	"snack-shop/controllers"
	"snack-shop/middleware"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Services struct {
	Orders  *services.OrderService
	Reports *services.ReportService
	Auth    *services.AuthService
	Session *services.Session
	Health  map[string]controllers.HealthCheck
}

func SetupRoutes(router *gin.Engine, svc Services) {
	authCtrl := controllers.NewAuthController(svc.Auth)
	menuCtrl := controllers.NewMenuController(svc.Orders)
	orderCtrl := controllers.NewOrderController(svc.Orders)
	billingCtrl := controllers.NewBillingController(svc.Orders)
	historyCtrl := controllers.NewHistoryController(svc.Orders, svc.Reports)
	settingsCtrl := controllers.NewSettingsController(svc.Session, svc.Orders)
	healthCtrl := controllers.NewHealthController(svc.Orders, svc.Health)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthCtrl.GetHealth)

	router.POST("/auth/login", authCtrl.Login)
	router.GET("/menu", menuCtrl.GetMenu)
	router.POST("/orders", orderCtrl.CreateOrder)

	owner := router.Group("/owner")
	owner.Use(middleware.AuthMiddleware(svc.Auth), middleware.OwnerMiddleware())
	{
		owner.GET("/kitchen", orderCtrl.GetKitchen)
		owner.GET("/orders", orderCtrl.ListOrders)
		owner.POST("/orders", orderCtrl.CreateOrder)
		owner.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		owner.DELETE("/orders/:id", orderCtrl.DeleteOrder)
		owner.POST("/orders/:id/print", orderCtrl.PrintOrder)

		owner.GET("/tables", billingCtrl.GetTables)
		owner.POST("/tables/:table/settle", billingCtrl.SettleTable)

		owner.GET("/history", historyCtrl.GetHistory)
		owner.GET("/history/export", historyCtrl.ExportHistory)
		owner.POST("/history/email", historyCtrl.EmailHistory)

		owner.GET("/settings", settingsCtrl.GetSettings)
		owner.PATCH("/settings/auto-print", settingsCtrl.SetAutoPrint)
		owner.GET("/notifications", settingsCtrl.GetNotifications)
	}
}
