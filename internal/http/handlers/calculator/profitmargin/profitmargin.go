// Package profitmargin реализует HTTP-обработчик калькулятора маржи процедуры.
package profitmargin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/services/calculator"
)

// Request — входные данные калькулятора маржи.
type Request struct {
	PriceCents       int `json:"price_cents" validate:"required,gt=0"`
	ProductCostCents int `json:"product_cost_cents" validate:"gte=0"`
	DurationMinutes  int `json:"duration_minutes" validate:"required,gt=0"`
	HourlyRateCents  int `json:"hourly_rate_cents" validate:"gte=0"`
}

// Handler обрабатывает запросы расчёта маржи.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Рассчитать маржу процедуры
// @Description Считает прибыль и маржу процедуры с учётом материалов и стоимости времени.
// @Tags Calculators
// @Accept  json
// @Produce  json
// @Param request body Request true "Цена, себестоимость, длительность и ставка"
// @Success 200 {object} calculator.ProfitMarginResult "Результат расчёта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или значения вне диапазона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /calculators/profit-margin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calculator.profitmargin"

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

	result, err := calculator.ProfitMargin(req.PriceCents, req.ProductCostCents,
		req.DurationMinutes, req.HourlyRateCents)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("input values out of range"))
			return
		}
		log.Error("failed to calculate profit margin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("calculation failed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
