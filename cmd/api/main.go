package main

import (
	"context"
	"log"
	"os"
	"time"

	"go-shoeroom/internal/cache"
	"go-shoeroom/internal/config"
	"go-shoeroom/internal/events"
	"go-shoeroom/internal/handler"
	"go-shoeroom/internal/kafka"
	"go-shoeroom/internal/repository"
	"go-shoeroom/internal/service"
	"go-shoeroom/internal/ws"
	"go-shoeroom/pkg/database"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())

	// 2. Setup Database
	db := database.ConnectDB(database.Config{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: cfg.DBLogLevel,
	})
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB:", err)
	}

	// 3. Setup WebSocket Hub + event publishers
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	publishers := []events.Publisher{wsHub}
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024)
		producer.Start(ctx)
		publishers = append(publishers, producer)
		log.Printf("Publishing events to kafka topic %s", cfg.KafkaTopic)
	}
	publisher := events.Multi(publishers...)

	// 4. Optional product cache
	var productCache service.ProductCache
	var redisCache *cache.Cache
	if cfg.RedisAddr != "" {
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		c, err := cache.Dial(pingCtx, cfg.RedisAddr, "shoeroom:", cfg.ProductCacheTTL)
		if err != nil {
			log.Printf("Warning: product cache disabled: %v", err)
		} else {
			// Entries written before a restart may predate store changes.
			if err := c.DeletePattern(pingCtx, "product*"); err != nil {
				log.Printf("Warning: flush stale product cache: %v", err)
			}
			redisCache = c
			productCache = c
		}
		pingCancel()
	}

	// 5. Dependency Injection (Wiring Layers)
	var uow repository.UnitOfWork
	if cfg.Transactional() {
		uow = repository.NewGormUnitOfWork(db)
	} else {
		log.Println("Warning: running without store transactions, failed invoices are rolled back by compensation")
		uow = repository.NewCompensatingUnitOfWork(db)
	}
	productRepo := repository.NewProductRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	productService := service.NewProductService(uow, productRepo, productCache, publisher)
	invoiceService := service.NewInvoiceService(uow, invoiceRepo, sqlDB, productCache, publisher)
	dashService := service.NewDashboardService(dashRepo, cfg.LowStockThreshold)

	errs := handler.ErrorResponder{Production: cfg.Production()}

	// 6. Setup Fiber
	app := handler.NewApp(handler.AppConfig{
		Name:        "Shoeroom Inventory v1.0",
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
		Errors:      errs,
	})

	// 7. Routes
	routes := handler.Routes{
		Products:  handler.NewProductHandler(productService, errs),
		Invoices:  handler.NewInvoiceHandler(invoiceService, errs),
		Dashboard: handler.NewDashboardHandler(dashService, errs),
		Store:     sqlDB,
		Hub:       wsHub,
	}
	if redisCache != nil {
		routes.Cache = redisCache
	}
	handler.SetupRoutes(app, routes)

	// 8. Serve
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// 9. Graceful Shutdown (SIGINT, SIGTERM), steps run in order
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"shoeroom": func(ctx context.Context) error {
			log.Println("Shutting down server...")
			if err := app.ShutdownWithContext(ctx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
			}
			cancel()
			if producer != nil {
				producer.WaitClosed()
			}
			if redisCache != nil {
				if err := redisCache.Close(); err != nil {
					log.Printf("Failed to close redis: %v", err)
				}
			}
			return sqlDB.Close()
		},
	})

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
