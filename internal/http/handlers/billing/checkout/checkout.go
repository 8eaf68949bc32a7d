// Package checkout реализует HTTP-обработчик создания checkout-сессии Stripe.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/services/billing"
)

// Request — входные данные для оформления подписки. Тело может быть пустым.
type Request struct {
	PromotionCode string `json:"promotion_code,omitempty"`
}

// Users загружает пользователя по UID из хранилища.
type Users interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service описывает интерфейс бизнес-логики оформления подписки.
type Service interface {
	Checkout(ctx context.Context, user *models.User, promotionCode string) (string, error)
}

// Handler обрабатывает запросы на создание checkout-сессии.
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
// @Summary Оформить подписку
// @Description Создает checkout-сессию Stripe и возвращает URL для оплаты. Может принимать код скидки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request false "Опциональный код скидки"
// @Success 200 {object} map[string]any "URL checkout-сессии"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

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

	url, err := h.service.Checkout(r.Context(), user, req.PromotionCode)
	if err != nil {
		if errors.Is(err, billing.ErrProviderUnavailable) {
			log.Error("payment provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("payment provider is temporarily unavailable, please try again"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start checkout"))
		return
	}

	log.Info("checkout session created", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"checkout_url": url,
	}))
}
