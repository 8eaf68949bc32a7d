// Package webhook реализует HTTP-обработчик входящих событий Stripe.
//
// Подпись заголовка Stripe-Signature проверяется до разбора тела. События
// обрабатываются идемпотентно: независимо от типа события состояние
// применяется из авторитетного снимка провайдера.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/stripe"
)

// signatureTolerance максимально допустимый возраст подписанного события.
const signatureTolerance = 5 * time.Minute

// Service описывает интерфейс обработки событий провайдера.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event *stripe.WebhookEvent) error
}

// Handler обрабатывает входящие webhook-события Stripe.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Webhook Stripe
// @Description Принимает события Stripe, проверяет подпись и применяет изменения состояния подписки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Router /webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if err := stripe.VerifyWebhookSignature(body, sigHeader, h.webhookSecret,
		signatureTolerance, time.Now()); err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event stripe.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid event payload"))
		return
	}
	log.Info("webhook event received", slog.String("type", event.Type))

	if err := h.service.ProcessWebhookEvent(r.Context(), &event); err != nil {
		// возвращаем 500, чтобы Stripe повторил доставку
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
