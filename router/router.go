package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-app/controllers"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/middlewares"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/store"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Store store.Store
	Hub   *kds.Hub
	// Alerts serves the notification routes; one is created (not started)
	// when nil.
	Alerts *services.AlertMonitor

	CORSOrigin    string
	RateLimit     float64
	RateBurst     int
	StaleTabAfter time.Duration
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Hub == nil {
		d.Hub = kds.NewHub()
	}
	if d.Alerts == nil {
		d.Alerts = services.NewAlertMonitor(d.Store, d.Hub, 0, d.StaleTabAfter)
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimit, d.RateBurst).RateLimit())
	}

	// Services
	tables := services.NewTableService(d.Store, d.Hub)
	tabs := services.NewTabEngine(d.Store, d.Hub)
	orders := services.NewOrderEngine(d.Store, d.Hub)
	reports := services.NewReportService(d.Store, d.StaleTabAfter)
	exports := services.NewExportService(reports, tabs)

	// Controllers
	userCtrl := controllers.NewUserController(d.Store)
	tableCtrl := controllers.NewTableController(tables)
	waiterCtrl := controllers.NewWaiterController(services.NewWaiterService(d.Store))
	categoryCtrl := controllers.NewMenuCategoryController(services.NewCategoryService(d.Store))
	menuCtrl := controllers.NewMenuController(services.NewMenuService(d.Store))
	stockCtrl := controllers.NewStockController(services.NewStockService(d.Store, d.Hub))
	tabCtrl := controllers.NewTabController(tabs, exports)
	orderCtrl := controllers.NewOrderController(orders)
	adminCtrl := controllers.NewAdminController(reports, exports)
	notificationCtrl := controllers.NewNotificationController(d.Alerts)
	kdsCtrl := controllers.NewKDSController(d.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)
	r.POST("/logout", middlewares.AuthMiddleware(), userCtrl.Logout)

	// Kitchen displays and waiter terminals
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), kdsCtrl.Handle)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	floor := middlewares.RequireRoles(models.RoleWaiter)
	kitchen := middlewares.RequireRoles(models.RoleWaiter, models.RoleKitchen)
	admin := middlewares.RequireRoles()

	api.GET("/profile", userCtrl.GetProfile)

	// TABLES
	api.GET("/tables", tableCtrl.GetAllTables)
	api.GET("/tables/:table_id", tableCtrl.GetTable)
	api.POST("/tables", admin, tableCtrl.CreateTable)
	api.PATCH("/tables/:table_id", admin, tableCtrl.UpdateTable)
	api.DELETE("/tables/:table_id", admin, tableCtrl.DeleteTable)

	// WAITERS
	api.GET("/waiters", floor, waiterCtrl.GetAllWaiters)
	api.GET("/waiters/:waiter_id", floor, waiterCtrl.GetWaiter)
	api.POST("/waiters", admin, waiterCtrl.CreateWaiter)
	api.PATCH("/waiters/:waiter_id", admin, waiterCtrl.UpdateWaiter)
	api.DELETE("/waiters/:waiter_id", admin, waiterCtrl.DeactivateWaiter)

	// MENU
	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/categories/:cat_id", categoryCtrl.GetCategory)
	api.POST("/categories", admin, categoryCtrl.CreateCategory)
	api.PATCH("/categories/:cat_id", admin, categoryCtrl.UpdateCategory)
	api.DELETE("/categories/:cat_id", admin, categoryCtrl.DeleteCategory)

	api.GET("/menu-items", menuCtrl.GetAllMenus)
	api.GET("/menu-items/:menu_id", menuCtrl.GetMenuByID)
	api.POST("/menu-items", admin, menuCtrl.CreateMenu)
	api.PATCH("/menu-items/:menu_id", admin, menuCtrl.UpdateMenu)
	api.DELETE("/menu-items/:menu_id", admin, menuCtrl.DeleteMenu)

	// STOCK (admin)
	stock := api.Group("/stock", admin)
	{
		stock.GET("", stockCtrl.GetAllStock)
		stock.POST("", stockCtrl.CreateStockItem)
		stock.GET("/:stock_id", stockCtrl.GetStockItem)
		stock.PATCH("/:stock_id", stockCtrl.UpdateStockItem)
		stock.POST("/:stock_id/adjust", stockCtrl.AdjustStock)
		stock.DELETE("/:stock_id", stockCtrl.DeleteStockItem)
	}

	// TABS (waiter/admin)
	tabsGroup := api.Group("/tabs", floor)
	{
		tabsGroup.GET("", tabCtrl.GetAllTabs)
		tabsGroup.POST("", tabCtrl.OpenTab)
		tabsGroup.GET("/:tab_id", tabCtrl.GetTab)
		tabsGroup.PATCH("/:tab_id", tabCtrl.UpdateTab)
		tabsGroup.POST("/:tab_id/close", tabCtrl.CloseTab)
		tabsGroup.POST("/:tab_id/cancel", tabCtrl.CancelTab)
		tabsGroup.GET("/:tab_id/receipt.pdf", tabCtrl.GetReceipt)
	}

	// ORDERS
	api.GET("/orders", kitchen, orderCtrl.GetAllOrders)
	api.GET("/orders/:order_id", kitchen, orderCtrl.GetOrderByID)
	api.POST("/orders", floor, orderCtrl.CreateOrder)
	api.POST("/orders/:order_id/cancel", floor, orderCtrl.CancelOrder)
	api.PATCH("/orders/:order_id/status", kitchen, orderCtrl.UpdateOrderStatus)
	api.PATCH("/orders/:order_id/items/:item_id/status", kitchen, orderCtrl.UpdateItemStatus)

	// KITCHEN
	api.GET("/kitchen/queue", kitchen, orderCtrl.GetKitchenDisplay)

	// ADMIN
	api.GET("/dashboard", admin, adminCtrl.GetDashboard)
	reportsGroup := api.Group("/reports", admin)
	{
		reportsGroup.GET("/sales", adminCtrl.GetSalesReport)
		reportsGroup.GET("/sales.xlsx", adminCtrl.ExportSales)
		reportsGroup.GET("/products", adminCtrl.GetProductsReport)
		reportsGroup.GET("/waiters", adminCtrl.GetWaitersReport)
	}
	api.GET("/notifications", admin, notificationCtrl.GetAllNotifications)
	api.POST("/notifications/check", admin, notificationCtrl.CheckAlerts)

	return r
}
