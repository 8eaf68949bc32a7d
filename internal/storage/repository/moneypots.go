package repository

import (
	"context"
	"fmt"

	"github.com/salonsuccess/salon-manager/internal/models"
)

// CreateMoneyPot добавляет новую копилку и возвращает её ID.
func (s *Storage) CreateMoneyPot(ctx context.Context, p models.MoneyPot) (int, error) {
	const op = "storage.CreateMoneyPot"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO money_pots (user_uid, name, percent, target_cents, saved_cents)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, p.Name, p.Percent, p.TargetCents, p.SavedCents).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListMoneyPots возвращает копилки пользователя.
func (s *Storage) ListMoneyPots(ctx context.Context, userUID string, limit, offset int) ([]*models.MoneyPot, error) {
	const op = "storage.ListMoneyPots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, percent, target_cents, saved_cents, created_at
			  FROM money_pots
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

	var result []*models.MoneyPot
	for rows.Next() {
		var p models.MoneyPot
		if err = rows.Scan(&p.ID, &p.UserUID, &p.Name, &p.Percent, &p.TargetCents,
			&p.SavedCents, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateMoneyPot обновляет копилку пользователя, возвращает количество обновлённых строк.
func (s *Storage) UpdateMoneyPot(ctx context.Context, p models.MoneyPot, id int, userUID string) (int, error) {
	const op = "storage.UpdateMoneyPot"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE money_pots
			  SET name = $1, percent = $2, target_cents = $3, saved_cents = $4
			  WHERE id = $5 AND user_uid = $6`
	res, err := s.DB.ExecContext(ctx, query, p.Name, p.Percent, p.TargetCents, p.SavedCents, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// RemoveMoneyPot удаляет копилку пользователя, возвращает количество удалённых строк.
func (s *Storage) RemoveMoneyPot(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveMoneyPot"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM money_pots WHERE id = $1 AND user_uid = $2`
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
