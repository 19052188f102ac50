package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-pos-farmstall/internal/handler"
	"go-pos-farmstall/internal/jobs"
	"go-pos-farmstall/internal/middleware"
	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"
	"go-pos-farmstall/internal/service"
	"go-pos-farmstall/internal/ws"
	"go-pos-farmstall/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const lowStockThreshold = 10

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Product{}, &model.Purchase{}, &model.Transaction{},
		&model.TransactionLine{}, &model.Setting{}, &model.User{})

	// 3. Seed first admin + default markup
	seedAdminAndSettings(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	settingRepo := repository.NewSettingRepo(db)
	userRepo := repository.NewUserRepo(db)

	catalogService := service.NewCatalogService(productRepo, purchaseRepo, ledgerRepo, settingRepo, db, wsHub)
	checkoutService := service.NewCheckoutService(productRepo, ledgerRepo, db, wsHub)
	statsService := service.NewStatsService(ledgerRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	statsHandler := handler.NewStatsHandler(statsService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	lowStock := jobs.NewLowStockWatcher(productRepo, wsHub, lowStockThreshold)
	lowStock.Start()

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Farm Stall POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

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
	admin := middleware.RequireRole(model.RoleAdmin)

	// Catalog (tellers read and resolve; admins mutate)
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/resolve", catalogHandler.ResolveProduct)
	protected.Get("/products/:id/suggested-price", catalogHandler.SuggestedPrice)
	protected.Post("/products", admin, catalogHandler.CreateProduct)
	protected.Put("/products/:id", admin, catalogHandler.UpdateProduct)
	protected.Delete("/products/:name", admin, catalogHandler.DeleteProduct)

	// Purchases (restocking, admin only)
	protected.Get("/purchases", admin, catalogHandler.GetPurchases)
	protected.Post("/purchases", admin, catalogHandler.CreatePurchase)

	// Checkout + ledger (both roles)
	protected.Get("/transactions", checkoutHandler.GetTransactions)
	protected.Get("/transactions/:id", checkoutHandler.GetTransaction)
	protected.Post("/transactions", checkoutHandler.Checkout)

	// Stats (admin only)
	protected.Get("/stats/today", admin, statsHandler.GetTodayStats)

	// Settings (admin only)
	protected.Get("/settings", admin, catalogHandler.GetSettings)
	protected.Post("/settings", admin, catalogHandler.UpdateSettings)

	// User management (admin only)
	protected.Get("/users", admin, userHandler.GetUsers)
	protected.Get("/users/:id", admin, userHandler.GetUser)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)
	protected.Delete("/users/:id", admin, userHandler.DeleteUser)

	// WebSocket Route
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
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	lowStock.Stop()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdminAndSettings creates the first admin user and the default markup
// setting when the database is empty.
func seedAdminAndSettings(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)
	settingRepo := repository.NewSettingRepo(db)

	count, err := userRepo.Count()
	if err != nil {
		log.Printf("Warning: failed to count users: %v", err)
		return
	}

	if count == 0 {
		username := os.Getenv("ADMIN_USER")
		if username == "" {
			username = "admin"
		}
		password := os.Getenv("ADMIN_PASS")
		if password == "" {
			password = "admin123"
		}

		admin := &model.User{
			Username: username,
			Role:     model.RoleAdmin,
			IsActive: true,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword(password); err != nil {
			log.Printf("Warning: failed to hash admin password: %v", err)
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: failed to create admin user: %v", err)
		} else {
			log.Printf("Admin user created: %s", username)
		}
	}

	if markup := os.Getenv("DEFAULT_MARKUP_PERCENT"); markup != "" {
		if _, err := settingRepo.Get(model.SettingMarkupPercent); err != nil {
			if _, parseErr := strconv.ParseFloat(markup, 64); parseErr == nil {
				if err := settingRepo.Set(model.SettingMarkupPercent, markup); err != nil {
					log.Printf("Warning: failed to seed markup setting: %v", err)
				}
			}
		}
	}
}
