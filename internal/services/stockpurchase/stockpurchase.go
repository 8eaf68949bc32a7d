// Package stockpurchase содержит бизнес-логику учёта закупок материалов.
package stockpurchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// Repository определяет методы для работы с закупками в хранилище.
type Repository interface {
	CreateStockPurchase(ctx context.Context, p models.StockPurchase) (int, error)
	ListStockPurchases(ctx context.Context, userUID string, limit, offset int) ([]*models.StockPurchase, error)
	RemoveStockPurchase(ctx context.Context, id int, userUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику учёта закупок.
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
	return fmt.Sprintf("stockpurchases:%s", userUID)
}

// Create создает новую закупку. Дата приходит строкой в формате 02-01-2006.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyStockPurchase) (int, error) {
	purchaseDate, err := time.Parse("02-01-2006", req.PurchaseDate)
	if err != nil {
		return 0, fmt.Errorf("invalid purchase date: %w", err)
	}

	p := models.StockPurchase{
		UserUID:      userUID,
		Supplier:     req.Supplier,
		Description:  req.Description,
		AmountCents:  req.AmountCents,
		PurchaseDate: purchaseDate,
	}

	id, err := s.repo.CreateStockPurchase(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new stock purchase", slog.Int("id", id))

	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate stock purchases cache", slog.Any("err", err))
	}
	return id, nil
}

// List возвращает закупки пользователя, используя кеш для первой страницы.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.StockPurchase, error) {
	var result []*models.StockPurchase
	useCache := offset == 0

	if useCache {
		found, err := s.cache.Get(listKey(userUID), &result)
		if err != nil {
			s.log.Warn("failed to read stock purchases cache", slog.Any("err", err))
		} else if found {
			return result, nil
		}
	}

	result, err := s.repo.ListStockPurchases(ctx, userUID, limit, offset)
	if err != nil {
		return nil, err
	}

	if useCache && result != nil {
		if err := s.cache.Set(listKey(userUID), result, time.Hour); err != nil {
			s.log.Warn("failed to cache stock purchases", slog.Any("err", err))
		}
	}
	return result, nil
}

// Remove удаляет закупку и инвалидирует кеш списка.
func (s *Service) Remove(ctx context.Context, id int, userUID string) (int, error) {
	if err := s.cache.Invalidate(listKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate stock purchases cache", slog.Any("err", err))
	}

	count, err := s.repo.RemoveStockPurchase(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
