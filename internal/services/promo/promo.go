// Package promo реализует применение промокодов: выдачу бесплатного доступа
// на фиксированный срок и скидки, передаваемые в checkout.
package promo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

var (
	// ErrInvalidCode код не найден в таблице, состояние не менялось.
	ErrInvalidCode = errors.New("invalid promo code")
	// ErrGrantStillActive у пользователя ещё действует доступ по этому коду.
	// Повторное применение не продлевает окно: выдача детерминирована,
	// сколько бы раз форма ни была отправлена.
	ErrGrantStillActive = errors.New("promo grant is still active")
)

// Grant результат применения промокода.
type Grant struct {
	Code          string `json:"code"`
	FreeDays      int    `json:"free_days,omitempty"`      // длительность бесплатного доступа
	PromotionCode string `json:"promotion_code,omitempty"` // ID скидки Stripe для checkout
	Message       string `json:"message"`
}

// UserRepository определяет методы хранилища, нужные при выдаче доступа.
type UserRepository interface {
	UpdateSubscriptionState(ctx context.Context, userUID string,
		status models.SubscriptionStatus, endDate *time.Time, cancelAtPeriodEnd bool) error
}

// Service применяет промокоды к пользователям.
type Service struct {
	repo UserRepository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// codes фиксированная таблица известных промокодов. Сопоставление
// регистронезависимое, ключи хранятся в верхнем регистре.
var codes = map[string]Grant{
	"CLIENT6FREE": {Code: "CLIENT6FREE", FreeDays: 180, Message: "6 months free access applied"},
	"SALONFREE30": {Code: "SALONFREE30", FreeDays: 30, Message: "30 days free access applied"},
	"LAUNCH20":    {Code: "LAUNCH20", PromotionCode: "promo_launch20", Message: "20% discount will be applied at checkout"},
}

// ApplyCode применяет промокод к пользователю.
//
// Код со скидкой не меняет состояние — возвращённый Grant передаётся в
// создание checkout-сессии. Код бесплатного доступа атомарно переводит
// пользователя в free_access с окончанием через FreeDays дней, перекрывая
// любое прежнее состояние, кроме ещё действующего такого же гранта.
func (s *Service) ApplyCode(ctx context.Context, user *models.User, code string) (*Grant, error) {
	const op = "promo.ApplyCode"

	grant, ok := codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrInvalidCode
	}

	if grant.PromotionCode != "" {
		s.log.Info("discount code resolved",
			slog.String("user_uid", user.UID),
			slog.String("code", grant.Code))
		return &grant, nil
	}

	now := s.now()
	if user.SubscriptionStatus == models.StatusFreeAccess &&
		user.SubscriptionEndDate != nil &&
		now.Before(*user.SubscriptionEndDate) {
		return nil, ErrGrantStillActive
	}

	endDate := now.AddDate(0, 0, grant.FreeDays)
	if err := s.repo.UpdateSubscriptionState(ctx, user.UID,
		models.StatusFreeAccess, &endDate, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.SubscriptionStatus = models.StatusFreeAccess
	user.SubscriptionEndDate = &endDate
	user.CancelAtPeriodEnd = false

	s.log.Info("free access granted",
		slog.String("user_uid", user.UID),
		slog.String("code", grant.Code),
		slog.Int("days", grant.FreeDays))
	return &grant, nil
}
