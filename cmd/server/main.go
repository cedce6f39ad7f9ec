package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ticketbari/ticketbari-api/internal/config"
	"github.com/ticketbari/ticketbari-api/internal/database"
	"github.com/ticketbari/ticketbari-api/internal/handler"
	"github.com/ticketbari/ticketbari-api/internal/middleware"
	"github.com/ticketbari/ticketbari-api/internal/payment"
	"github.com/ticketbari/ticketbari-api/internal/queue"
	"github.com/ticketbari/ticketbari-api/internal/repository"
	"github.com/ticketbari/ticketbari-api/internal/router"
	"github.com/ticketbari/ticketbari-api/internal/service"
)

func main() {
	// Load .env in development; ignore when absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; caching and rate limiting degrade to no-ops
	// when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	ticketRepo := repository.NewTicketRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	txnRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	provider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.PaymentTimeout, cfg.PaymentRetries)
	converter := service.Converter{BDTPerUSD: cfg.BDTPerUSD}

	ticketSvc := service.NewTicketService(ticketRepo)
	bookingSvc := service.NewBookingService(ticketRepo, bookingRepo, cfg.RefCodeAttempts)
	paymentSvc := service.NewPaymentService(bookingRepo, txnRepo, ticketRepo, provider, converter, service.QueuePublisher{})
	txnSvc := service.NewTransactionService(txnRepo)
	userSvc := service.NewUserService(userRepo, ticketRepo)

	handlers := router.Handlers{
		Users:        handler.NewUserHandler(userSvc),
		Tickets:      handler.NewTicketHandler(ticketSvc),
		Bookings:     handler.NewBookingHandler(bookingSvc),
		Payments:     handler.NewPaymentHandler(paymentSvc),
		Transactions: handler.NewTransactionHandler(txnSvc),
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handlers.Tickets,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterAPI(e, handlers, cfg.JWTSecret, middleware.ResolverFromRepo(userRepo))

	// The payment consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
