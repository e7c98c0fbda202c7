package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"

	"github.com/mindfulpages/order-intake/internal/cache"
	"github.com/mindfulpages/order-intake/internal/config"
	"github.com/mindfulpages/order-intake/internal/gateway"
	"github.com/mindfulpages/order-intake/internal/handlers"
	"github.com/mindfulpages/order-intake/internal/mailer"
	"github.com/mindfulpages/order-intake/internal/messaging"
	"github.com/mindfulpages/order-intake/internal/repository"
	"github.com/mindfulpages/order-intake/internal/service"
)

func main() {
	log.Println("Order intake service starting...")

	cfg := config.Load()

	// Standard-tier database. Absence is not fatal: the checkout handler
	// reports a configuration error per request, health stays up.
	var store service.OrderStore
	if cfg.Database.Configured() {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("Database connection error: %v", err)
		}
		defer db.Close()

		serviceDB := openServiceDatabase(cfg.ServiceDatabase)
		if serviceDB != nil {
			defer serviceDB.Close()
		}

		store = repository.NewOrderRepository(db, serviceDB)
	} else {
		log.Println("WARNING: database credentials not configured; checkout will be rejected")
	}

	// RabbitMQ carries the post-commit retry hand-off. The service degrades
	// to inline-only best effort when the broker is unreachable.
	var (
		publisher messaging.EventPublisher
		consumer  *messaging.Consumer
	)
	rabbitClient := messaging.NewRabbitMQClient(cfg.RabbitMQ)
	if err := rabbitClient.Connect(); err != nil {
		log.Printf("RabbitMQ unavailable, retry hand-off disabled: %v", err)
	} else {
		defer rabbitClient.Close()
		publisher = messaging.NewPublisher(rabbitClient)
		consumer = messaging.NewConsumer(rabbitClient, "order-intake-fulfillment", "order-intake")
	}

	var orderCache cache.Cache
	if cfg.RedisAddr != "" {
		orderCache = cache.NewRedisCache(cfg.RedisAddr, "order-intake")
	}

	var m mailer.Mailer
	if cfg.Production {
		m = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		m = mailer.NewSimulatedMailer()
		log.Println("Email dispatch simulated (APP_ENV != production)")
	}

	var paymentGateway gateway.PaymentGateway
	if cfg.Payment.StripeSecretKey != "" {
		paymentGateway = gateway.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.BaseURL, cfg.Payment.Timeout)
	} else {
		paymentGateway = gateway.NewMockPaymentGateway(gateway.PaymentIntentSucceeded)
		log.Println("WARNING: no Stripe key configured; card payments are trusted unverified")
	}

	orderService := service.NewOrderService(store, paymentGateway, m, publisher, orderCache, cfg.OperatorEmail)
	fulfillmentService := service.NewFulfillmentService(store, m, cfg.OperatorEmail)
	orderHandler := handlers.NewOrderHandler(orderService, fulfillmentService)

	app := setupFiberApp()
	setupRoutes(app, orderHandler)

	if consumer != nil {
		go func() {
			if err := orderHandler.StartConsuming(consumer); err != nil {
				log.Printf("Fulfillment consumer error: %v", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Order intake service shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Order intake service listening on :%s", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("database open error: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping error: %v", err)
	}

	log.Printf("Database connected: %s", cfg.Name)
	return db, nil
}

// openServiceDatabase opens the elevated tier when one is configured.
// Failure here is logged, not fatal; intake falls back to the standard
// credential.
func openServiceDatabase(cfg config.DatabaseConfig) *sql.DB {
	if !cfg.Configured() {
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Printf("Service-tier database unavailable, using standard credential only: %v", err)
		return nil
	}

	log.Println("Service-tier database credential configured")
	return db
}

func setupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Order Intake v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return app
}

func setupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler) {
	api := app.Group("/api")

	api.Get("/health", orderHandler.HealthCheck)

	api.Post("/checkout", orderHandler.Checkout)
	api.All("/checkout", orderHandler.MethodNotAllowed)

	api.Get("/orders/:number", orderHandler.GetOrderByNumber)

	app.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
