// Package hourlyrate реализует HTTP-обработчик калькулятора часовой ставки.
package hourlyrate

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

// Request — входные данные калькулятора часовой ставки.
type Request struct {
	MonthlyCostsCents  int `json:"monthly_costs_cents" validate:"gte=0"`
	DesiredIncomeCents int `json:"desired_income_cents" validate:"required,gt=0"`
	HoursPerWeek       int `json:"hours_per_week" validate:"required,gt=0,lte=100"`
}

// Handler обрабатывает запросы расчёта часовой ставки.
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
// @Summary Рассчитать часовую ставку
// @Description Считает минимальную часовую ставку, покрывающую расходы и желаемый доход.
// @Tags Calculators
// @Accept  json
// @Produce  json
// @Param request body Request true "Расходы, желаемый доход и загрузка"
// @Success 200 {object} calculator.HourlyRateResult "Результат расчёта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или значения вне диапазона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /calculators/hourly-rate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calculator.hourlyrate"

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

	result, err := calculator.HourlyRate(req.MonthlyCostsCents, req.DesiredIncomeCents, req.HoursPerWeek)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("input values out of range"))
			return
		}
		log.Error("failed to calculate hourly rate", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("calculation failed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
