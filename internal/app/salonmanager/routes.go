// Package salonmanager собирает HTTP-приложение салона: маршруты,
// middleware и жизненный цикл сервера.
package salonmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/salonsuccess/salon-manager/internal/http/handlers/admin/userlist"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/auth/login"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/auth/register"
	billingcancel "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/cancel"
	billingcheckout "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/checkout"
	billingstatus "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/status"
	billingsync "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/sync"
	billingverify "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/verify"
	billingwebhook "github.com/salonsuccess/salon-manager/internal/http/handlers/billing/webhook"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/calculator/hourlyrate"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/calculator/profitmargin"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/calculator/revenueprojection"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/calculator/stockbudget"
	"github.com/salonsuccess/salon-manager/internal/http/handlers/health"
	moneypotcreate "github.com/salonsuccess/salon-manager/internal/http/handlers/moneypot/create"
	moneypotlist "github.com/salonsuccess/salon-manager/internal/http/handlers/moneypot/list"
	moneypotremove "github.com/salonsuccess/salon-manager/internal/http/handlers/moneypot/remove"
	moneypotupdate "github.com/salonsuccess/salon-manager/internal/http/handlers/moneypot/update"
	promoapply "github.com/salonsuccess/salon-manager/internal/http/handlers/promo/apply"
	stockcreate "github.com/salonsuccess/salon-manager/internal/http/handlers/stockpurchase/create"
	stocklist "github.com/salonsuccess/salon-manager/internal/http/handlers/stockpurchase/list"
	stockremove "github.com/salonsuccess/salon-manager/internal/http/handlers/stockpurchase/remove"
	treatmentcreate "github.com/salonsuccess/salon-manager/internal/http/handlers/treatment/create"
	treatmentlist "github.com/salonsuccess/salon-manager/internal/http/handlers/treatment/list"
	treatmentremove "github.com/salonsuccess/salon-manager/internal/http/handlers/treatment/remove"
	treatmentupdate "github.com/salonsuccess/salon-manager/internal/http/handlers/treatment/update"
	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	authservice "github.com/salonsuccess/salon-manager/internal/services/auth"
	billingservice "github.com/salonsuccess/salon-manager/internal/services/billing"
	"github.com/salonsuccess/salon-manager/internal/services/calculator"
	moneypotservice "github.com/salonsuccess/salon-manager/internal/services/moneypot"
	promoservice "github.com/salonsuccess/salon-manager/internal/services/promo"
	stockservice "github.com/salonsuccess/salon-manager/internal/services/stockpurchase"
	treatmentservice "github.com/salonsuccess/salon-manager/internal/services/treatment"
	"github.com/salonsuccess/salon-manager/internal/storage/repository"
)

// Services собирает сервисы, нужные маршрутам приложения.
type Services struct {
	Auth          *authservice.Service
	Billing       *billingservice.Service
	Promo         *promoservice.Service
	Treatments    *treatmentservice.Service
	MoneyPots     *moneypotservice.Service
	Stock         *stockservice.Service
	StockBudget   *calculator.StockBudgetService
	Storage       *repository.Storage
	WebhookSecret string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(50, 100)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)

		// Webhook endpoint (без аутентификации, проверяется подписью)
		r.Post("/webhooks/stripe", billingwebhook.New(logger, s.Billing, s.WebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией: биллинг и промокоды доступны
		// и пользователям без действующей подписки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Get("/billing/status", billingstatus.New(logger, s.Storage, s.Billing).ServeHTTP)
			r.Post("/billing/checkout", billingcheckout.New(logger, s.Storage, s.Billing).ServeHTTP)
			r.Post("/billing/verify", billingverify.New(logger, s.Billing).ServeHTTP)
			r.Post("/billing/sync", billingsync.New(logger, s.Storage, s.Billing).ServeHTTP)
			r.Post("/billing/cancel", billingcancel.New(logger, s.Storage, s.Billing).ServeHTTP)
			r.Post("/promo/apply", promoapply.New(logger, s.Storage, s.Promo).ServeHTTP)

			r.Get("/admin/users", userlist.New(logger, s.Storage).ServeHTTP)

			// Рабочие инструменты салона доступны только с действующей подпиской
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.EntitlementMiddleware(logger, s.Storage))

				r.Post("/treatments", treatmentcreate.New(logger, s.Treatments).ServeHTTP)
				r.Get("/treatments", treatmentlist.New(logger, s.Treatments).ServeHTTP)
				r.Put("/treatments/{id}", treatmentupdate.New(logger, s.Treatments).ServeHTTP)
				r.Delete("/treatments/{id}", treatmentremove.New(logger, s.Treatments).ServeHTTP)

				r.Post("/money-pots", moneypotcreate.New(logger, s.MoneyPots).ServeHTTP)
				r.Get("/money-pots", moneypotlist.New(logger, s.MoneyPots).ServeHTTP)
				r.Put("/money-pots/{id}", moneypotupdate.New(logger, s.MoneyPots).ServeHTTP)
				r.Delete("/money-pots/{id}", moneypotremove.New(logger, s.MoneyPots).ServeHTTP)

				r.Post("/stock-purchases", stockcreate.New(logger, s.Stock).ServeHTTP)
				r.Get("/stock-purchases", stocklist.New(logger, s.Stock).ServeHTTP)
				r.Delete("/stock-purchases/{id}", stockremove.New(logger, s.Stock).ServeHTTP)

				r.Post("/calculators/hourly-rate", hourlyrate.New(logger).ServeHTTP)
				r.Post("/calculators/profit-margin", profitmargin.New(logger).ServeHTTP)
				r.Post("/calculators/revenue-projection", revenueprojection.New(logger).ServeHTTP)
				r.Post("/calculators/stock-budget", stockbudget.New(logger, s.StockBudget).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
