package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/salonsuccess/salon-manager/internal/entitlement"
	"github.com/salonsuccess/salon-manager/internal/http/response"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
)

// UserProvider загружает пользователя по UID из хранилища.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// EntitlementMiddleware создает middleware, пропускающий дальше только
// пользователей с действующим доступом. Администраторы проходят всегда.
//
// При отсутствии доступа возвращает HTTP 402 Payment Required с подсказкой,
// что нужно оформить подписку.
func EntitlementMiddleware(log *slog.Logger, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if role, ok := r.Context().Value(Role).(string); ok && role == "admin" {
				next.ServeHTTP(w, r)
				return
			}

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.GetUser(r.Context(), userUID)
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			access := entitlement.Evaluate(user, time.Now())
			if !access.HasAccess {
				log.Info("access denied, subscription required",
					slog.String("user_uid", userUID),
					slog.String("status", string(user.SubscriptionStatus)))
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("your subscription has ended, please choose a plan to continue"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
