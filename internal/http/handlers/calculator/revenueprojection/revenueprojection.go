// Package revenueprojection реализует HTTP-обработчик прогноза выручки.
package revenueprojection

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

// Request — входные данные прогноза выручки.
type Request struct {
	AveragePriceCents int `json:"average_price_cents" validate:"required,gt=0"`
	ClientsPerWeek    int `json:"clients_per_week" validate:"required,gt=0"`
	WeeksPerYear      int `json:"weeks_per_year" validate:"required,gt=0,lte=52"`
}

// Handler обрабатывает запросы прогноза выручки.
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
// @Summary Построить прогноз выручки
// @Description Считает недельную, месячную и годовую выручку по средней цене процедуры и потоку клиентов.
// @Tags Calculators
// @Accept  json
// @Produce  json
// @Param request body Request true "Средняя цена, клиенты в неделю, рабочие недели"
// @Success 200 {object} calculator.RevenueProjectionResult "Результат прогноза"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или значения вне диапазона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /calculators/revenue-projection [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calculator.revenueprojection"

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

	result, err := calculator.RevenueProjection(req.AveragePriceCents, req.ClientsPerWeek, req.WeeksPerYear)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("input values out of range"))
			return
		}
		log.Error("failed to project revenue", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("calculation failed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
