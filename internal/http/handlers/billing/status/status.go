// Package status реализует HTTP-обработчик, возвращающий сводку по подписке
// текущего пользователя без обращения к платёжному провайдеру.
package status

import (
	"context"
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

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	Summarize(user *models.User, now time.Time) billing.Summary
}

// Handler обрабатывает запросы на получение статуса подписки.
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
// @Summary Статус подписки
// @Description Возвращает статус подписки, признак доступа и число оставшихся дней для текущего пользователя.
// @Tags Billing
// @Produce  json
// @Success 200 {object} billing.Summary "Сводка по подписке"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.status"

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

	summary := h.service.Summarize(user, time.Now())
	render.JSON(w, r, response.OKWithData(summary))
}
