package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/salonsuccess/salon-manager/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, subscription_status,
			      subscription_end_date, cancel_at_period_end, stripe_customer_id, stripe_subscription_id`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var endDate sql.NullTime
	var customerID, subscriptionID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.SubscriptionStatus, &endDate, &u.CancelAtPeriodEnd,
		&customerID, &subscriptionID); err != nil {
		return nil, err
	}
	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		u.StripeSubscriptionID = &subscriptionID.String
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.SubscriptionStatus).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByStripeCustomerID возвращает пользователя по ID клиента Stripe.
// Используется при обработке webhook-событий, где нет нашего UID.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByStripeCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE stripe_customer_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, customerID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSubscriptionState атомарно обновляет состояние подписки пользователя.
// Статус, дата окончания и флаг отмены меняются одним UPDATE, чтобы
// конкурентное чтение не увидело частично применённое состояние.
func (s *Storage) UpdateSubscriptionState(ctx context.Context, userUID string,
	status models.SubscriptionStatus, endDate *time.Time, cancelAtPeriodEnd bool) error {
	const op = "storage.UpdateSubscriptionState"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      subscription_end_date = $2,
			      cancel_at_period_end = $3
			  WHERE uid = $4`
	res, err := s.DB.ExecContext(ctx, query, status, endDate, cancelAtPeriodEnd, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: user %s not found", op, userUID)
	}
	return nil
}

// UpdateStripeRefs сохраняет внешние идентификаторы Stripe для пользователя.
func (s *Storage) UpdateStripeRefs(ctx context.Context, userUID, customerID, subscriptionID string) error {
	const op = "storage.UpdateStripeRefs"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET stripe_customer_id = $1,
			      stripe_subscription_id = $2
			  WHERE uid = $3`
	_, err := s.DB.ExecContext(ctx, query, customerID, subscriptionID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает список пользователей с пагинацией. Используется админкой.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY username
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireLapsedEntitlements переводит истёкшие trial и free_access в inactive
// и возвращает затронутых пользователей для отправки уведомлений.
func (s *Storage) ExpireLapsedEntitlements(ctx context.Context, now time.Time) ([]*models.User, error) {
	const op = "storage.ExpireLapsedEntitlements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = 'inactive'
			  WHERE subscription_status IN ('trial', 'free_access')
			    AND subscription_end_date IS NOT NULL
			    AND subscription_end_date < $1
			  RETURNING ` + userColumns
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
