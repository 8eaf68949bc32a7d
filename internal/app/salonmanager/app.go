package salonmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/salonsuccess/salon-manager/internal/cache"
	"github.com/salonsuccess/salon-manager/internal/config"
	"github.com/salonsuccess/salon-manager/internal/lib/jwt"
	"github.com/salonsuccess/salon-manager/internal/migrations"
	authservice "github.com/salonsuccess/salon-manager/internal/services/auth"
	billingservice "github.com/salonsuccess/salon-manager/internal/services/billing"
	"github.com/salonsuccess/salon-manager/internal/services/calculator"
	moneypotservice "github.com/salonsuccess/salon-manager/internal/services/moneypot"
	promoservice "github.com/salonsuccess/salon-manager/internal/services/promo"
	stockservice "github.com/salonsuccess/salon-manager/internal/services/stockpurchase"
	treatmentservice "github.com/salonsuccess/salon-manager/internal/services/treatment"
	"github.com/salonsuccess/salon-manager/internal/storage/repository"
	"github.com/salonsuccess/salon-manager/internal/stripe"
)

// App основное HTTP-приложение салона.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New собирает приложение: хранилище, миграции, кеш, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := stripe.NewClient(cfg.Stripe.SecretKey)

	services := Services{
		Auth:          authservice.New(db, jwtMaker),
		Billing:       billingservice.New(db, providerClient, cfg.Stripe, logger),
		Promo:         promoservice.New(db, logger),
		Treatments:    treatmentservice.New(db, cacheRedis, logger),
		MoneyPots:     moneypotservice.New(db, cacheRedis, logger),
		Stock:         stockservice.New(db, cacheRedis, logger),
		StockBudget:   calculator.NewStockBudgetService(db),
		Storage:       db,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
