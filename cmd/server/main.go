package main

import (
	"errors"
	"log"
	"strings"

	"econome-backend/internal/admin"
	"econome-backend/internal/auth"
	"econome-backend/internal/catalog"
	"econome-backend/internal/config"
	"econome-backend/internal/database"
	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/orders"
	"econome-backend/internal/settings"
	"econome-backend/internal/stock"
	"econome-backend/internal/storage"
	"econome-backend/internal/suggest"
	"econome-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	appLog := logger.New(logger.Config{
		Level:  logger.LogLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: "stdout",
	})

	store := storage.NewGormStore(database.DB)
	orderSvc := orders.NewService(store, appLog)
	stockSvc := stock.NewService(store, appLog)
	suggestSvc := suggest.NewService(store, appLog)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{
					"error": fe.Message,
				})
			}
			if status, ok := httperr.Status(err); ok {
				return c.Status(status).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(cfg, store))
	api.Post("/auth/login", auth.LoginHandler(cfg, store))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(store))

	// Manager-only routes
	managerRoutes := protected.Group("")
	managerRoutes.Use(auth.RequireRole(models.RoleManager))

	// User management
	managerRoutes.Get("/users", admin.ListUsersHandler(store))
	managerRoutes.Get("/users/:id", admin.GetUserHandler(store))
	managerRoutes.Post("/users", admin.CreateUserHandler(store))
	managerRoutes.Put("/users/:id", admin.UpdateUserHandler(store))
	managerRoutes.Delete("/users/:id", admin.DeleteUserHandler(store))

	// App settings (AI provider)
	managerRoutes.Get("/settings", settings.GetSettingsHandler(store))
	managerRoutes.Put("/settings", settings.UpdateSettingsHandler(store))

	// Product catalog
	protected.Get("/products", catalog.ListProductsHandler(store))
	protected.Get("/products/low-stock", catalog.LowStockProductsHandler(store))
	protected.Get("/products/:id", catalog.GetProductHandler(store))
	protected.Post("/products", catalog.CreateProductHandler(store))
	protected.Put("/products/:id", catalog.UpdateProductHandler(store))
	protected.Delete("/products/:id", catalog.DeleteProductHandler(store))

	// Stock bookkeeping
	protected.Patch("/products/:id/stock", stock.AdjustStockHandler(stockSvc))
	protected.Get("/products/:id/movements", stock.ListMovementsHandler(stockSvc))
	protected.Post("/sales", stock.ApplySalesHandler(stockSvc))
	protected.Post("/sales/upload", stock.UploadSalesHandler(stockSvc))
	protected.Post("/stock-imports", stock.InventoryImportHandler(stockSvc))
	protected.Post("/stock-imports/upload", stock.UploadInventoryImportHandler(stockSvc))
	protected.Get("/stock-imports", stock.ImportHistoryHandler(stockSvc))

	// Supplier catalog
	protected.Get("/suppliers", catalog.ListSuppliersHandler(store))
	protected.Get("/suppliers/:id", catalog.GetSupplierHandler(store))
	protected.Post("/suppliers", catalog.CreateSupplierHandler(store))
	protected.Put("/suppliers/:id", catalog.UpdateSupplierHandler(store))
	protected.Delete("/suppliers/:id", catalog.DeleteSupplierHandler(store))

	// Cart & orders
	protected.Post("/cart/group", orders.GroupCartHandler(orderSvc))
	protected.Get("/orders", orders.ListOrdersHandler(orderSvc))
	protected.Get("/orders/stats/monthly-spending", orders.MonthlySpendingHandler(orderSvc))
	protected.Get("/orders/:id", orders.GetOrderHandler(orderSvc))
	protected.Post("/orders", orders.CreateFromCartHandler(orderSvc))
	protected.Post("/orders/:id/send", orders.SendOrderHandler(orderSvc))
	protected.Post("/orders/:id/confirm", orders.ConfirmOrderHandler(orderSvc))
	protected.Post("/orders/:id/cancel", orders.CancelOrderHandler(orderSvc))
	protected.Post("/orders/:id/receive", orders.ReceiveOrderHandler(orderSvc))
	protected.Delete("/orders/:id", orders.DeleteOrderHandler(orderSvc))

	// AI suggestions
	protected.Post("/suggestions/generate", suggest.GenerateSuggestionsHandler(suggestSvc))

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
