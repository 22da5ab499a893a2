package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/api"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/config"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/customers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/drinks"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/ledger"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/providers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/supplies"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/users"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/db"
	httpx "github.com/DaniloBenetati/gestaodeatendimento/internal/infra/http"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/logger"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/infra/notify"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			log.Error("telegram notifier unavailable", "err", err)
		} else {
			notifier = tg
		}
	}

	sessionRepo := sessions.NewRepo(pool)
	pricingRepo := pricing.NewRepo(pool)
	customerRepo := customers.NewRepo(pool)
	providerRepo := providers.NewRepo(pool)
	drinkRepo := drinks.NewRepo(pool)
	userRepo := users.NewRepo(pool)
	supplyRepo := supplies.NewRepo(pool)

	handler := api.New(
		sessions.NewService(sessionRepo, pricingRepo, customerRepo, notifier),
		sessionRepo,
		pricingRepo,
		providerRepo,
		customerRepo,
		drinks.NewService(drinkRepo),
		drinkRepo,
		ledger.NewService(sessionRepo, notifier),
		ledger.NewClosureRepo(pool),
		userRepo,
		supplyRepo,
		log,
	)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler.Register)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
	notifier.Notify("servidor iniciado", notify.KindSuccess)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
