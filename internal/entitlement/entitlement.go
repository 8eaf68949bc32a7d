// Package entitlement содержит чистую логику определения доступа пользователя
// к платным возможностям сервиса.
//
// Evaluate не выполняет I/O и не меняет состояние — это функция от записи
// пользователя и текущего времени. Перевод истёкших trial/free_access в
// inactive выполняет отдельный фоновый процесс (services/sweeper), поэтому
// корректность доступа не зависит от побочных эффектов при вычислении.
package entitlement

import (
	"math"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// Access результат вычисления доступа для записи пользователя.
type Access struct {
	HasAccess   bool   `json:"has_access"`
	IsTrial     bool   `json:"is_trial"`
	DaysLeft    *int   `json:"days_left,omitempty"`
	StatusLabel string `json:"status_label"`
}

// Evaluate вычисляет доступ пользователя на момент now.
//
// Правила, в порядке применения:
//  1. active — доступ есть независимо от даты окончания: дата при активной
//     подписке означает следующий платёж, а не конец доступа;
//  2. free_access — доступ до даты окончания включительно; отсутствующая дата
//     трактуется как отказ (никогда не выдаём бессрочный бесплатный доступ
//     на битых данных);
//  3. trial — как free_access, плюс количество оставшихся дней;
//  4. всё остальное (inactive, cancelled, past_due, неизвестный статус) — отказа.
func Evaluate(user *models.User, now time.Time) Access {
	switch user.SubscriptionStatus {
	case models.StatusActive:
		return Access{
			HasAccess:   true,
			StatusLabel: labelActive(user),
		}
	case models.StatusFreeAccess:
		if user.SubscriptionEndDate == nil {
			return Access{StatusLabel: "free access misconfigured, contact support"}
		}
		if now.After(*user.SubscriptionEndDate) {
			return Access{StatusLabel: "free access expired"}
		}
		days := daysLeft(now, *user.SubscriptionEndDate)
		return Access{
			HasAccess:   true,
			DaysLeft:    &days,
			StatusLabel: "free access",
		}
	case models.StatusTrial:
		if user.SubscriptionEndDate == nil {
			return Access{IsTrial: true, StatusLabel: "trial expired"}
		}
		if now.After(*user.SubscriptionEndDate) {
			return Access{IsTrial: true, StatusLabel: "trial expired"}
		}
		days := daysLeft(now, *user.SubscriptionEndDate)
		return Access{
			HasAccess:   true,
			IsTrial:     true,
			DaysLeft:    &days,
			StatusLabel: "trial",
		}
	case models.StatusPastDue:
		return Access{StatusLabel: "payment failed, update your payment method"}
	case models.StatusCancelled:
		return Access{StatusLabel: "subscription cancelled"}
	default:
		return Access{StatusLabel: "no active subscription"}
	}
}

// daysLeft возвращает количество оставшихся полных и неполных дней.
// Округление всегда вверх: окончание через 2 дня 3 часа — это 3 дня.
func daysLeft(now, end time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func labelActive(user *models.User) string {
	if user.CancelAtPeriodEnd {
		return "active until period end"
	}
	return "active"
}
