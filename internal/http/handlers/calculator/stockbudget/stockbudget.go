// Package stockbudget реализует HTTP-обработчик калькулятора бюджета
// на расходные материалы.
package stockbudget

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/services/calculator"
)

// Request — входные данные калькулятора бюджета на материалы.
type Request struct {
	MonthlyRevenueCents int `json:"monthly_revenue_cents" validate:"required,gt=0"`
	BudgetPercent       int `json:"budget_percent" validate:"required,gt=0,lte=100"`
}

// Service описывает интерфейс расчёта бюджета с учётом закупок за месяц.
type Service interface {
	StockBudget(ctx context.Context, userUID string,
		monthlyRevenueCents, budgetPercent int, now time.Time) (*calculator.StockBudgetResult, error)
}

// Handler обрабатывает запросы расчёта бюджета на материалы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Рассчитать бюджет на материалы
// @Description Считает месячный бюджет на материалы и сравнивает его с фактическими закупками текущего месяца.
// @Tags Calculators
// @Accept  json
// @Produce  json
// @Param request body Request true "Месячная выручка и процент бюджета"
// @Success 200 {object} calculator.StockBudgetResult "Результат расчёта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или значения вне диапазона"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /calculators/stock-budget [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calculator.stockbudget"

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

	result, err := h.service.StockBudget(r.Context(), userUID,
		req.MonthlyRevenueCents, req.BudgetPercent, time.Now())
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("input values out of range"))
			return
		}
		log.Error("failed to calculate stock budget", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("calculation failed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
