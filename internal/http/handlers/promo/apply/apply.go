// Package apply реализует HTTP-обработчик применения промокодов.
package apply

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/services/promo"
)

// Request — входные данные с промокодом.
type Request struct {
	Code string `json:"code" validate:"required,min=2,max=50"`
}

// Users загружает пользователя по UID из хранилища.
type Users interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service описывает интерфейс бизнес-логики применения промокода.
type Service interface {
	ApplyCode(ctx context.Context, user *models.User, code string) (*promo.Grant, error)
}

// Handler обрабатывает HTTP-запросы на применение промокода.
type Handler struct {
	log      *slog.Logger
	users    Users
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, users Users, service Service) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Применить промокод
// @Description Применяет промокод к текущему пользователю. Код бесплатного доступа сразу активирует доступ, код скидки учитывается при оформлении подписки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Промокод"
// @Success 200 {object} map[string]any "Код применён"
// @Failure 400 {object} response.ErrorResponse "Неизвестный промокод"
// @Failure 409 {object} response.ErrorResponse "Доступ по коду ещё действует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /promo/apply [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.promo.apply"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
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

	grant, err := h.service.ApplyCode(r.Context(), user, req.Code)
	switch {
	case errors.Is(err, promo.ErrInvalidCode):
		log.Info("unknown promo code submitted", slog.String("code", req.Code))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid promo code"))
		return
	case errors.Is(err, promo.ErrGrantStillActive):
		log.Info("promo grant still active", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("your free access from this code is still active"))
		return
	case err != nil:
		log.Error("failed to apply promo code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not apply promo code"))
		return
	}

	log.Info("promo code applied", slog.String("code", grant.Code))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"success":        true,
		"message":        grant.Message,
		"promotion_code": grant.PromotionCode,
	}))
}
