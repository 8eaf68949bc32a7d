package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// CreateStockPurchase добавляет новую закупку и возвращает её ID.
func (s *Storage) CreateStockPurchase(ctx context.Context, p models.StockPurchase) (int, error) {
	const op = "storage.CreateStockPurchase"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO stock_purchases (user_uid, supplier, description, amount_cents, purchase_date)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, p.Supplier, p.Description, p.AmountCents, p.PurchaseDate).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListStockPurchases возвращает закупки пользователя с пагинацией.
func (s *Storage) ListStockPurchases(ctx context.Context, userUID string, limit, offset int) ([]*models.StockPurchase, error) {
	const op = "storage.ListStockPurchases"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, supplier, description, amount_cents, purchase_date, created_at
			  FROM stock_purchases
			  WHERE user_uid = $1
			  ORDER BY purchase_date DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.StockPurchase
	for rows.Next() {
		var p models.StockPurchase
		if err = rows.Scan(&p.ID, &p.UserUID, &p.Supplier, &p.Description,
			&p.AmountCents, &p.PurchaseDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SumStockPurchasesSince возвращает сумму закупок пользователя с указанной даты.
// Используется калькулятором бюджета на материалы.
func (s *Storage) SumStockPurchasesSince(ctx context.Context, userUID string, since time.Time) (int, error) {
	const op = "storage.SumStockPurchasesSince"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(amount_cents), 0)
			  FROM stock_purchases
			  WHERE user_uid = $1 AND purchase_date >= $2`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, userUID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// RemoveStockPurchase удаляет закупку пользователя, возвращает количество удалённых строк.
func (s *Storage) RemoveStockPurchase(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveStockPurchase"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM stock_purchases WHERE id = $1 AND user_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}
