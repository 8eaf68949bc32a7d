// Package userlist реализует HTTP-обработчик административного списка
// пользователей с их состоянием доступа.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/salonsuccess/salon-manager/internal/entitlement"
	"github.com/salonsuccess/salon-manager/internal/http/middlewarectx"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
)

// Service описывает интерфейс получения списка пользователей.
type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// UserView строка списка без чувствительных полей.
type UserView struct {
	UID         string                    `json:"uid"`
	Email       string                    `json:"email"`
	Username    string                    `json:"username"`
	Role        string                    `json:"role"`
	Status      models.SubscriptionStatus `json:"status"`
	StatusLabel string                    `json:"status_label"`
	HasAccess   bool                      `json:"has_access"`
	EndDate     *time.Time                `json:"end_date,omitempty"`
}

// Handler управляет HTTP-запросами административного списка пользователей.
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
// @Summary Список пользователей
// @Description Возвращает пользователей с состоянием их доступа. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Размер страницы" default(10)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]any "Список пользователей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, ok := r.Context().Value(middlewarectx.Role).(string)
	if !ok || role != "admin" {
		log.Error("access denied, admin role required")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("admin access required"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	now := time.Now()
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		access := entitlement.Evaluate(u, now)
		views = append(views, UserView{
			UID:         u.UID,
			Email:       u.Email,
			Username:    u.Username,
			Role:        u.Role,
			Status:      u.SubscriptionStatus,
			StatusLabel: access.StatusLabel,
			HasAccess:   access.HasAccess,
			EndDate:     u.SubscriptionEndDate,
		})
	}

	log.Info("users listed", "count", len(views))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(views),
		"users":      views,
	}))
}
