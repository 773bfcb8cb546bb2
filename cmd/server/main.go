package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/showtix/ticketing-server/internal/auth"
	"github.com/showtix/ticketing-server/internal/catalog"
	"github.com/showtix/ticketing-server/internal/config"
	"github.com/showtix/ticketing-server/internal/database"
	"github.com/showtix/ticketing-server/internal/handler"
	"github.com/showtix/ticketing-server/internal/logger"
	"github.com/showtix/ticketing-server/internal/middleware"
	"github.com/showtix/ticketing-server/internal/payments"
	"github.com/showtix/ticketing-server/internal/queue"
	"github.com/showtix/ticketing-server/internal/repository"
	"github.com/showtix/ticketing-server/internal/router"
	"github.com/showtix/ticketing-server/internal/session"
	"github.com/showtix/ticketing-server/internal/sync"

	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env always wins

	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient(zlog)
	var sessions *session.Store
	if rdb != nil {
		sessions = session.NewStore(rdb, time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	}

	users := repository.NewUserRepo(db)
	shows := repository.NewShowRepo(db)
	events := repository.NewEventRepo(db)
	buildings := repository.NewBuildingRepo(db)
	paymentsRepo := repository.NewPaymentRepo(db)

	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL, zlog)
		go queue.StartConsumer(cfg.AMQPURL, zlog)
	}

	fetcher := catalog.NewClient(cfg.CatalogBaseURL, zlog)
	reconciler := sync.NewReconciler(shows, events, buildings, zlog)
	syncSvc := sync.NewService(fetcher, reconciler, syncPublisher(publisher), zlog)

	authSvc := auth.NewService(users, auth.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		BcryptCost:    cfg.BcryptCost,
	}, zlog)

	webhookSvc := payments.NewWebhookService(paymentsRepo, paymentPublisher(publisher), cfg.WebhookSecret, zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	var sessionTokens middleware.SessionTokens
	if sessions != nil {
		sessionTokens = sessions
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, sessions), cfg.AccessSecret, authSvc, sessionTokens)
	router.RegisterSync(e, handler.NewSyncHandler(syncSvc), handler.NewShopHandler(shows), cfg.AccessSecret, authSvc, sessionTokens)
	router.RegisterPayments(e, handler.NewPaymentHandler(webhookSvc))

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

// syncPublisher keeps the sync service's publisher nil when no broker is
// configured; a typed nil *queue.Publisher would defeat its nil check.
func syncPublisher(p *queue.Publisher) sync.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func paymentPublisher(p *queue.Publisher) payments.Publisher {
	if p == nil {
		return nil
	}
	return p
}
