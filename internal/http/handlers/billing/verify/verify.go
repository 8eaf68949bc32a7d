// Package verify реализует HTTP-обработчик подтверждения оплаты после
// возврата пользователя со страницы checkout. Обработчик опрашивает
// провайдера, пока подписка не станет действующей или не истечёт время.
package verify

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

// writeBudget ограничивает время записи ответа. Опрос провайдера может идти
// дольше WriteTimeout сервера, поэтому дедлайн соединения продлевается с
// запасом над бюджетом опроса, иначе соединение закроется раньше, чем
// клиент получит ответ о таймауте подтверждения.
const writeBudget = 90 * time.Second

// Service описывает интерфейс ожидания активации подписки.
type Service interface {
	WaitForActivation(ctx context.Context, userUID string) (*models.User, error)
	Summarize(user *models.User, now time.Time) billing.Summary
}

// Handler обрабатывает запросы на подтверждение оплаты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить оплату
// @Description Ожидает, пока Stripe подтвердит активацию подписки. Возвращает сводку либо 504, если подтверждение не пришло.
// @Tags Billing
// @Produce  json
// @Success 200 {object} billing.Summary "Подписка активирована"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 504 {object} response.ErrorResponse "Подтверждение не получено"
// @Router /billing/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.verify"

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

	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(writeBudget)); err != nil {
		// не все ResponseWriter поддерживают дедлайны, опрос всё равно продолжаем
		log.Warn("failed to extend write deadline", sl.Err(err))
	}

	user, err := h.service.WaitForActivation(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, billing.ErrVerificationTimeout) {
			log.Error("payment verification timed out", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusGatewayTimeout)
			render.JSON(w, r, response.Error("payment confirmation is taking longer than expected, please refresh in a minute"))
			return
		}
		log.Error("failed to verify payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify payment"))
		return
	}

	log.Info("subscription activated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(h.service.Summarize(user, time.Now())))
}
