package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Category{}, &model.Product{}, &model.StockLog{},
		&model.Transaction{}, &model.TransactionItem{}, &model.Barcode{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	)

	// 3. Seed privileges, roles and the default admin
	seedRolesAndAdmin(db)

	// 4. WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency wiring
	productRepo := repository.NewProductRepo(db)
	stockLogRepo := repository.NewStockLogRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	barcodeRepo := repository.NewBarcodeRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	stockService := service.NewStockService(productRepo, stockLogRepo, db, wsHub)
	barcodeService := service.NewBarcodeService(barcodeRepo, db, cfg, wsHub)
	productService := service.NewProductService(productRepo, stockLogRepo, barcodeService, db, wsHub)
	checkoutService := service.NewCheckoutService(productRepo, stockLogRepo, txRepo, db, cfg, wsHub)
	dashService := service.NewDashboardService(txRepo, productRepo, barcodeService)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	stockHandler := handler.NewStockHandler(stockService)
	barcodeHandler := handler.NewBarcodeHandler(barcodeService)
	productHandler := handler.NewProductHandler(productService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Backend v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/overview", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetOverview)
	protected.Get("/dashboard/sales", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesSeries)
	protected.Get("/dashboard/summary", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesSummary)

	// Catalog
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/low-stock", middleware.RequirePrivilege("stock:view"), productHandler.GetLowStock)
	protected.Get("/products/barcode/:code", productHandler.ScanBarcode)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeactivateProduct)

	// Stock ledger
	protected.Post("/products/:id/stock/adjust", middleware.RequirePrivilege("stock:adjust"), stockHandler.AdjustStock)
	protected.Post("/products/:id/stock/restock", middleware.RequirePrivilege("stock:adjust"), stockHandler.Restock)
	protected.Get("/products/:id/stock/ledger", middleware.RequirePrivilege("stock:view"), stockHandler.GetLedger)
	protected.Get("/products/:id/stock/reconcile", middleware.RequirePrivilege("stock:view"), stockHandler.Reconcile)

	// Checkout & transactions
	protected.Post("/checkout", middleware.RequirePrivilege("checkout:create"), checkoutHandler.Checkout)
	protected.Get("/transactions", middleware.RequirePrivilege("transaction:view"), checkoutHandler.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege("transaction:view"), checkoutHandler.GetTransaction)
	protected.Post("/transactions/:id/finalize", middleware.RequirePrivilege("transaction:finalize"), checkoutHandler.FinalizePayment)
	protected.Post("/transactions/:id/fail", middleware.RequirePrivilege("transaction:finalize"), checkoutHandler.FailTransaction)
	protected.Post("/transactions/:id/cancel", middleware.RequirePrivilege("transaction:cancel"), checkoutHandler.CancelTransaction)

	// Barcode pool
	protected.Get("/barcodes", middleware.RequirePrivilege("barcode:view"), barcodeHandler.ListBarcodes)
	protected.Get("/barcodes/status", middleware.RequirePrivilege("barcode:view"), barcodeHandler.PoolStatus)
	protected.Post("/barcodes/generate", middleware.RequirePrivilege("barcode:generate"), barcodeHandler.GenerateBatch)
	protected.Post("/barcodes/allocate", middleware.RequirePrivilege("barcode:generate"), barcodeHandler.Allocate)

	// Staff management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles & privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep-alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedRolesAndAdmin creates default privileges, roles and the admin account
// on first boot.
func seedRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN always holds every privilege.
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("MASTER_ADMIN role assigned all privileges")
	}

	// The remaining roles get their configured subset.
	for code, codes := range model.RolePrivilegeCodes {
		role, err := roleRepo.FindByCode(code)
		if err != nil || len(role.Privileges) > 0 {
			continue
		}
		privileges, err := privilegeRepo.FindByCodes(codes)
		if err != nil {
			log.Printf("Warning: Failed to load privileges for role %s: %v", code, err)
			continue
		}
		db.Model(&role).Association("Privileges").Replace(privileges)
		log.Printf("%s role assigned %d privileges", code, len(privileges))
	}

	// Default admin account
	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Master Administrator",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}
