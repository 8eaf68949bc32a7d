// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и состояние подписки.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// SubscriptionStatus локальный статус подписки пользователя.
//
// Значения меняются только через сверку со Stripe, применение промокода
// или фоновый процесс, гасящий истёкшие trial/free_access.
type SubscriptionStatus string

const (
	// StatusInactive — подписка не оформлялась или истекла.
	StatusInactive SubscriptionStatus = "inactive"
	// StatusTrial — действует пробный период.
	StatusTrial SubscriptionStatus = "trial"
	// StatusActive — действует оплаченная подписка.
	StatusActive SubscriptionStatus = "active"
	// StatusFreeAccess — действует бесплатный доступ по промокоду.
	StatusFreeAccess SubscriptionStatus = "free_access"
	// StatusCancelled — подписка отменена.
	StatusCancelled SubscriptionStatus = "cancelled"
	// StatusPastDue — оплата просрочена.
	StatusPastDue SubscriptionStatus = "past_due"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                  string             // Уникальный идентификатор пользователя
	Email                string             // Электронная почта
	Username             string             // Имя пользователя (уникальное)
	PasswordHash         string             // Хэш пароля пользователя
	Role                 string             // Роль пользователя, admin или user
	SubscriptionStatus   SubscriptionStatus // Локальный статус подписки
	SubscriptionEndDate  *time.Time         // Окончание trial, free_access или текущего оплаченного периода
	CancelAtPeriodEnd    bool               // Пользователь запросил отмену, доступ до конца периода
	StripeCustomerID     *string            // ID клиента в Stripe, появляется после первого checkout
	StripeSubscriptionID *string            // ID подписки в Stripe
}
