// Package treatment содержит бизнес-логику работы с процедурами салона,
// включая кеширование списка процедур.
package treatment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// Repository определяет методы для работы с процедурами в хранилище.
type Repository interface {
	// CreateTreatment добавляет новую процедуру и возвращает её ID.
	CreateTreatment(ctx context.Context, t models.Treatment) (int, error)
	// ListTreatments возвращает процедуры пользователя с пагинацией.
	ListTreatments(ctx context.Context, userUID string, limit, offset int) ([]*models.Treatment, error)
	// UpdateTreatment обновляет процедуру и возвращает количество обновлённых строк.
	UpdateTreatment(ctx context.Context, t models.Treatment, id int, userUID string) (int, error)
	// RemoveTreatment удаляет процедуру и возвращает количество удалённых строк.
	RemoveTreatment(ctx context.Context, id int, userUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы с процедурами, включая кеширование.
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
	return fmt.Sprintf("treatments:%s", userUID)
}

// Create создает новую процедуру пользователя и инвалидирует кеш списка.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyTreatment) (int, error) {
	t := models.Treatment{
		UserUID:         userUID,
		Name:            req.Name,
		Price:           req.Price,
		ProductCost:     req.ProductCost,
		DurationMinutes: req.DurationMinutes,
	}

	id, err := s.repo.CreateTreatment(ctx, t)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new treatment", slog.Int("id", id))

	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate treatments cache", slog.Any("err", err))
	}
	return id, nil
}

// List возвращает процедуры пользователя, используя кеш или репозиторий.
// Кеш используется только для первой страницы.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Treatment, error) {
	var result []*models.Treatment
	useCache := offset == 0

	if useCache {
		found, err := s.cache.Get(listKey(userUID), &result)
		if err != nil {
			s.log.Warn("failed to read treatments cache", slog.Any("err", err))
		} else if found {
			return result, nil
		}
	}

	result, err := s.repo.ListTreatments(ctx, userUID, limit, offset)
	if err != nil {
		return nil, err
	}

	if useCache && result != nil {
		if err := s.cache.Set(listKey(userUID), result, time.Hour); err != nil {
			s.log.Warn("failed to cache treatments", slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет процедуру и инвалидирует кеш списка.
func (s *Service) Update(ctx context.Context, req models.DummyTreatment, id int, userUID string) (int, error) {
	t := models.Treatment{
		UserUID:         userUID,
		Name:            req.Name,
		Price:           req.Price,
		ProductCost:     req.ProductCost,
		DurationMinutes: req.DurationMinutes,
	}
	res, err := s.repo.UpdateTreatment(ctx, t, id, userUID)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated treatment in storage", slog.Int("id", id))

	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate treatments cache", slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет процедуру и инвалидирует кеш списка.
func (s *Service) Remove(ctx context.Context, id int, userUID string) (int, error) {
	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate treatments cache", slog.Any("err", err))
	}

	count, err := s.repo.RemoveTreatment(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
