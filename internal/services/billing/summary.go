package billing

import (
	"time"

	"github.com/salonsuccess/salon-manager/internal/entitlement"
	"github.com/salonsuccess/salon-manager/internal/models"
)

// Summary состояние подписки пользователя в виде, пригодном для UI.
type Summary struct {
	Status            models.SubscriptionStatus `json:"status"`
	HasAccess         bool                      `json:"has_access"`
	IsTrial           bool                      `json:"is_trial"`
	DaysLeft          *int                      `json:"days_left,omitempty"`
	StatusLabel       string                    `json:"status_label"`
	EndDate           *time.Time                `json:"end_date,omitempty"`
	CancelAtPeriodEnd bool                      `json:"cancel_at_period_end"`
	AmountCents       int                       `json:"amount_cents"`
	Currency          string                    `json:"currency"`
}

// Summarize собирает сводку по записи пользователя без обращения к провайдеру.
// Для принудительной сверки используется отдельная операция Reconcile.
func (s *Service) Summarize(user *models.User, now time.Time) Summary {
	access := entitlement.Evaluate(user, now)
	return Summary{
		Status:            user.SubscriptionStatus,
		HasAccess:         access.HasAccess,
		IsTrial:           access.IsTrial,
		DaysLeft:          access.DaysLeft,
		StatusLabel:       access.StatusLabel,
		EndDate:           user.SubscriptionEndDate,
		CancelAtPeriodEnd: user.CancelAtPeriodEnd,
		AmountCents:       s.cfg.PlanAmountCents,
		Currency:          s.cfg.PlanCurrency,
	}
}
