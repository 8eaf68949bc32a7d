package repository

import (
	"context"
	"fmt"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// CreateTreatment добавляет новую процедуру и возвращает её ID.
func (s *Storage) CreateTreatment(ctx context.Context, t models.Treatment) (int, error) {
	const op = "storage.CreateTreatment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO treatments (user_uid, name, price, product_cost, duration_minutes)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		t.UserUID, t.Name, t.Price, t.ProductCost, t.DurationMinutes).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListTreatments возвращает процедуры пользователя с пагинацией.
func (s *Storage) ListTreatments(ctx context.Context, userUID string, limit, offset int) ([]*models.Treatment, error) {
	const op = "storage.ListTreatments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, price, product_cost, duration_minutes, created_at
			  FROM treatments
			  WHERE user_uid = $1
			  ORDER BY name
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Treatment
	for rows.Next() {
		var t models.Treatment
		if err = rows.Scan(&t.ID, &t.UserUID, &t.Name, &t.Price, &t.ProductCost,
			&t.DurationMinutes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTreatment обновляет процедуру пользователя, возвращает количество обновлённых строк.
func (s *Storage) UpdateTreatment(ctx context.Context, t models.Treatment, id int, userUID string) (int, error) {
	const op = "storage.UpdateTreatment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE treatments
			  SET name = $1, price = $2, product_cost = $3, duration_minutes = $4
			  WHERE id = $5 AND user_uid = $6`
	res, err := s.DB.ExecContext(ctx, query, t.Name, t.Price, t.ProductCost, t.DurationMinutes, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// RemoveTreatment удаляет процедуру пользователя, возвращает количество удалённых строк.
func (s *Storage) RemoveTreatment(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveTreatment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM treatments WHERE id = $1 AND user_uid = $2`
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
