// Package billing содержит бизнес-логику сверки локального состояния подписки
// с данными Stripe: обработку webhook-событий, ручную синхронизацию, checkout
// и отмену подписки.
//
// Правило сверки одно: авторитетным является снимок подписки на стороне
// провайдера, локальное состояние — его проекция. Запись проекции атомарна
// (статус, дата окончания и флаг отмены меняются вместе), поэтому гонка
// webhook-а и ручной синхронизации разрешается как "последняя запись
// провайдера побеждает".
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/salonsuccess/salon-manager/internal/config"
	"github.com/salonsuccess/salon-manager/internal/entitlement"
	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/stripe"
)

var (
	// ErrNoSubscription пользователь ни разу не проходил checkout.
	ErrNoSubscription = errors.New("user has no provider subscription")
	// ErrProviderUnavailable провайдер недоступен, локальное состояние не менялось.
	ErrProviderUnavailable = errors.New("billing provider unavailable")
	// ErrVerificationTimeout подтверждение оплаты не пришло за отведённое время.
	ErrVerificationTimeout = errors.New("payment verification timed out")
)

// UserRepository определяет методы хранилища, нужные биллингу.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateSubscriptionState применяет новое состояние одним атомарным UPDATE.
	UpdateSubscriptionState(ctx context.Context, userUID string,
		status models.SubscriptionStatus, endDate *time.Time, cancelAtPeriodEnd bool) error
	UpdateStripeRefs(ctx context.Context, userUID, customerID, subscriptionID string) error
}

// ProviderClient определяет операции Stripe API, используемые сервисом.
type ProviderClient interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
}

// Service реализует сверку подписки со Stripe.
type Service struct {
	repo     UserRepository
	provider ProviderClient
	cfg      config.Stripe
	log      *slog.Logger

	pollInterval time.Duration
	pollAttempts int
}

// New создает новый экземпляр Service.
func New(repo UserRepository, provider ProviderClient, cfg config.Stripe, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		provider:     provider,
		cfg:          cfg,
		log:          log,
		pollInterval: 2 * time.Second,
		pollAttempts: 30,
	}
}

// mapStatus переводит статус провайдера в локальный. Второй результат false
// означает неизвестный статус: локальное состояние в этом случае не меняется.
func mapStatus(s stripe.SubscriptionStatus) (models.SubscriptionStatus, bool) {
	switch s {
	case stripe.StatusTrialing:
		return models.StatusTrial, true
	case stripe.StatusActive:
		return models.StatusActive, true
	case stripe.StatusPastDue:
		return models.StatusPastDue, true
	case stripe.StatusCanceled, stripe.StatusUnpaid:
		return models.StatusCancelled, true
	case stripe.StatusIncompleteExpired:
		return models.StatusInactive, true
	default:
		return "", false
	}
}

// Reconcile запрашивает у провайдера снимок подписки пользователя и применяет
// его к локальной записи. При недоступности провайдера состояние остаётся
// нетронутым и возвращается ErrProviderUnavailable: уже выданный доступ
// сохраняется, новый просто задерживается.
func (s *Service) Reconcile(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "billing.Reconcile"

	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	snap, err := s.provider.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProviderUnavailable, err)
	}

	return s.applySnapshot(ctx, user, snap)
}

// applySnapshot применяет снимок провайдера к локальной записи пользователя.
// Применение дважды одного снимка даёт одно и то же состояние.
func (s *Service) applySnapshot(ctx context.Context, user *models.User, snap *stripe.Subscription) (*models.User, error) {
	const op = "billing.applySnapshot"

	status, known := mapStatus(snap.Status)
	if !known {
		s.log.Warn("unknown provider subscription status, keeping local state",
			slog.String("op", op),
			slog.String("status", string(snap.Status)),
			slog.String("user_uid", user.UID))
		return user, nil
	}

	// Действующий бесплатный доступ по промокоду не гасится спящей подпиской
	// Stripe: перезаписываем его только действительно активной подпиской.
	if user.SubscriptionStatus == models.StatusFreeAccess &&
		user.SubscriptionEndDate != nil &&
		time.Now().Before(*user.SubscriptionEndDate) &&
		status != models.StatusActive {
		s.log.Info("active promo grant takes precedence over dormant provider state",
			slog.String("user_uid", user.UID),
			slog.String("provider_status", string(snap.Status)))
		return user, nil
	}

	var endDate *time.Time
	if snap.CurrentPeriodEnd > 0 {
		t := time.Unix(snap.CurrentPeriodEnd, 0).UTC()
		endDate = &t
	}

	if err := s.repo.UpdateSubscriptionState(ctx, user.UID, status, endDate, snap.CancelAtPeriodEnd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := *user
	updated.SubscriptionStatus = status
	updated.SubscriptionEndDate = endDate
	updated.CancelAtPeriodEnd = snap.CancelAtPeriodEnd

	s.log.Info("subscription state reconciled",
		slog.String("user_uid", user.UID),
		slog.String("status", string(status)))
	return &updated, nil
}

// WaitForActivation опрашивает провайдера после редиректа с checkout, пока
// подписка не станет действующей. Интервал и число попыток ограничены, опрос
// останавливается по контексту; по исчерпании попыток возвращается
// ErrVerificationTimeout.
func (s *Service) WaitForActivation(ctx context.Context, userUID string) (*models.User, error) {
	const op = "billing.WaitForActivation"

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-ticker.C:
		}

		user, err := s.repo.GetUser(ctx, userUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		updated, err := s.Reconcile(ctx, user)
		if err != nil {
			if errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrNoSubscription) {
				// webhook мог ещё не привязать подписку, пробуем дальше
				s.log.Info("activation not confirmed yet",
					slog.Int("attempt", attempt), sl.Err(err))
				continue
			}
			return nil, err
		}

		if entitlement.Evaluate(updated, time.Now()).HasAccess {
			return updated, nil
		}
	}
	return nil, ErrVerificationTimeout
}

// Checkout создаёт checkout-сессию подписки и возвращает адрес страницы оплаты.
// promotionCode — ID скидочного промокода Stripe, опционально.
func (s *Service) Checkout(ctx context.Context, user *models.User, promotionCode string) (string, error) {
	const op = "billing.Checkout"

	session, err := s.provider.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		CustomerEmail: user.Email,
		PriceID:       s.cfg.PriceID,
		TrialDays:     s.cfg.TrialDays,
		PromotionCode: promotionCode,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
		ClientRefID:   user.UID,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrProviderUnavailable, err)
	}

	s.log.Info("checkout session created",
		slog.String("user_uid", user.UID),
		slog.String("session_id", session.ID))
	return session.URL, nil
}

// Cancel помечает подписку на отмену в конце периода. Доступ сохраняется
// до конца оплаченного периода, состояние применяется из ответа провайдера.
func (s *Service) Cancel(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "billing.Cancel"

	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	snap, err := s.provider.CancelAtPeriodEnd(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProviderUnavailable, err)
	}
	return s.applySnapshot(ctx, user, snap)
}

// ProcessWebhookEvent обрабатывает событие Stripe. Независимо от типа события
// состояние применяется из повторно запрошенного авторитетного снимка,
// поэтому порядок доставки событий не важен.
func (s *Service) ProcessWebhookEvent(ctx context.Context, event *stripe.WebhookEvent) error {
	const op = "billing.ProcessWebhookEvent"

	switch event.Type {
	case "checkout.session.completed":
		userUID := event.Data.Object.ClientRefID
		if userUID == "" {
			return fmt.Errorf("%s: checkout event without client reference", op)
		}
		if err := s.repo.UpdateStripeRefs(ctx, userUID,
			event.Data.Object.Customer, event.Data.Object.Subscription); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		user, err := s.repo.GetUser(ctx, userUID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = s.Reconcile(ctx, user)
		return err

	case "customer.subscription.updated", "customer.subscription.deleted", "invoice.payment_failed":
		user, err := s.repo.GetUserByStripeCustomerID(ctx, event.Data.Object.Customer)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = s.Reconcile(ctx, user)
		return err

	default:
		s.log.Info("ignored webhook event", slog.String("type", event.Type))
		return nil
	}
}
