// Package sync реализует HTTP-обработчик принудительной сверки подписки
// с платёжным провайдером.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/services/billing"
)

// Users загружает пользователя по UID из хранилища.
type Users interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service описывает интерфейс бизнес-логики сверки.
type Service interface {
	Reconcile(ctx context.Context, user *models.User) (*models.User, error)
	Summarize(user *models.User, now time.Time) billing.Summary
}

// Handler обрабатывает запросы на сверку подписки.
type Handler struct {
	log     *slog.Logger
	users   Users
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, users Users, service Service) *Handler {
	return &Handler{
		log:     log,
		users:   users,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сверить подписку с провайдером
// @Description Запрашивает у Stripe актуальный снимок подписки, применяет его к записи пользователя и возвращает обновлённую сводку.
// @Tags Billing
// @Produce  json
// @Success 200 {object} billing.Summary "Обновлённая сводка"
// @Failure 400 {object} response.ErrorResponse "Подписка не оформлялась"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Провайдер недоступен"
// @Router /billing/sync [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.sync"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.users.GetUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	updated, err := h.service.Reconcile(r.Context(), user)
	switch {
	case errors.Is(err, billing.ErrNoSubscription):
		log.Info("sync requested without subscription", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("no subscription to sync"))
		return
	case errors.Is(err, billing.ErrProviderUnavailable):
		log.Error("payment provider unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("payment provider is temporarily unavailable, please try again"))
		return
	case err != nil:
		log.Error("failed to reconcile subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sync subscription"))
		return
	}

	log.Info("subscription reconciled", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(h.service.Summarize(updated, time.Now())))
}
