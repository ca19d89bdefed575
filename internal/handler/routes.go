package handler

import (
	"context"

	"go-shoeroom/internal/cache"
	"go-shoeroom/internal/service"
	"go-shoeroom/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	Name        string
	CORSOrigins string
	AccessLog   bool
	Errors      ErrorResponder
}

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: cfg.Errors.FiberErrorHandler,
	})

	if cfg.AccessLog {
		app.Use(logger.New()) // Logging request
	}
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	return app
}

type Routes struct {
	Products  *ProductHandler
	Invoices  *InvoiceHandler
	Dashboard *DashboardHandler
	Store     service.Pinger
	Cache     CacheStatus // optional
	Hub       *ws.Hub     // optional
}

// CacheStatus is what /healthz reads from the product cache.
// *cache.Cache satisfies it.
type CacheStatus interface {
	Ping(ctx context.Context) error
	Snapshot() cache.Stats
}

func SetupRoutes(app *fiber.App, r Routes) {
	app.Get("/healthz", Health(r))

	api := app.Group("/api")

	products := api.Group("/products")
	products.Get("/", r.Products.GetProducts)
	products.Post("/", r.Products.CreateProduct)
	products.Get("/:sku", r.Products.GetProduct)
	products.Put("/:sku", r.Products.UpdateProduct)
	products.Delete("/:sku", r.Products.DeleteProduct)
	products.Patch("/:sku/stock", r.Products.AdjustStock)

	invoices := api.Group("/invoices")
	invoices.Get("/", r.Invoices.GetInvoices)
	invoices.Post("/", r.Invoices.CreateInvoice)
	invoices.Delete("/", r.Invoices.DeleteInvoices)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", r.Dashboard.GetDashboardStats)
	dashboard.Get("/sales", r.Dashboard.GetSales)

	if r.Hub == nil {
		return
	}

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(r.Hub.Serve))
}

// Health pings the store. The cache is optional, so a failing cache is
// reported without failing the check.
// GET /healthz
func Health(r Routes) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if r.Store != nil {
			if err := r.Store.PingContext(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}

		body := fiber.Map{"status": "ok"}
		if r.Cache != nil {
			cacheStatus := "ok"
			if err := r.Cache.Ping(ctx); err != nil {
				cacheStatus = "unavailable"
			}
			body["cache"] = fiber.Map{"status": cacheStatus, "stats": r.Cache.Snapshot()}
		}
		if r.Hub != nil {
			body["wsClients"] = r.Hub.ClientCount()
		}
		return c.JSON(body)
	}
}
