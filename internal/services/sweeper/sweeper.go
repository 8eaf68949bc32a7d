// Package sweeper содержит фоновый сервис, который переводит истёкшие
// триалы и промо-доступы в inactive и публикует уведомления об этом.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/salonsuccess/salon-manager/internal/lib/sl"
	"github.com/salonsuccess/salon-manager/internal/models"
	"github.com/salonsuccess/salon-manager/internal/rabbitmq"
)

// Repository определяет методы для поиска и деактивации истёкших доступов.
type Repository interface {
	// ExpireLapsedEntitlements переводит истёкшие trial и free_access в inactive
	// и возвращает затронутых пользователей.
	ExpireLapsedEntitlements(ctx context.Context, now time.Time) ([]*models.User, error)
}

// Service периодически деактивирует истёкшие доступы.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Run выполняет первый проход сразу, затем повторяет каждые interval.
// Завершается при отмене контекста.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.sweep(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) sweep(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting sweep for lapsed entitlements")
	users, err := s.repo.ExpireLapsedEntitlements(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to expire lapsed entitlements", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no lapsed entitlements found")
		return
	}
	s.log.Info("deactivated lapsed entitlements", "count", len(users))
	for _, user := range users {
		if err = rabbitmq.PublishMessage(channel, "notifications", "expired", user); err != nil {
			s.log.Error("failed to publish expiry notification", sl.Err(err))
		}
	}
}
