// Package moneypot содержит бизнес-логику работы с копилками.
package moneypot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// Repository определяет методы для работы с копилками в хранилище.
type Repository interface {
	CreateMoneyPot(ctx context.Context, p models.MoneyPot) (int, error)
	ListMoneyPots(ctx context.Context, userUID string, limit, offset int) ([]*models.MoneyPot, error)
	UpdateMoneyPot(ctx context.Context, p models.MoneyPot, id int, userUID string) (int, error)
	RemoveMoneyPot(ctx context.Context, id int, userUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы с копилками.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func listKey(userUID string) string {
	return fmt.Sprintf("moneypots:%s", userUID)
}

// Create создает новую копилку пользователя и инвалидирует кеш списка.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyMoneyPot) (int, error) {
	p := models.MoneyPot{
		UserUID:     userUID,
		Name:        req.Name,
		Percent:     req.Percent,
		TargetCents: req.TargetCents,
		SavedCents:  req.SavedCents,
	}

	id, err := s.repo.CreateMoneyPot(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new money pot", slog.Int("id", id))

	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate money pots cache", slog.Any("err", err))
	}
	return id, nil
}

// List возвращает копилки пользователя, используя кеш для первой страницы.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.MoneyPot, error) {
	var result []*models.MoneyPot
	useCache := offset == 0

	if useCache {
		found, err := s.cache.Get(listKey(userUID), &result)
		if err != nil {
			s.log.Warn("failed to read money pots cache", slog.Any("err", err))
		} else if found {
			return result, nil
		}
	}

	result, err := s.repo.ListMoneyPots(ctx, userUID, limit, offset)
	if err != nil {
		return nil, err
	}

	if useCache && result != nil {
		if err := s.cache.Set(listKey(userUID), result, time.Hour); err != nil {
			s.log.Warn("failed to cache money pots", slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет копилку и инвалидирует кеш списка.
func (s *Service) Update(ctx context.Context, req models.DummyMoneyPot, id int, userUID string) (int, error) {
	p := models.MoneyPot{
		UserUID:     userUID,
		Name:        req.Name,
		Percent:     req.Percent,
		TargetCents: req.TargetCents,
		SavedCents:  req.SavedCents,
	}
	res, err := s.repo.UpdateMoneyPot(ctx, p, id, userUID)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated money pot in storage", slog.Int("id", id))

	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate money pots cache", slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет копилку и инвалидирует кеш списка.
func (s *Service) Remove(ctx context.Context, id int, userUID string) (int, error) {
	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate money pots cache", slog.Any("err", err))
	}

	count, err := s.repo.RemoveMoneyPot(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
