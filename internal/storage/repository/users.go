package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const userColumns = `uid, auth_id, email, username, password_hash, phone,
	customer_ref, token_ref, trial_end_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var customerRef, tokenRef sql.NullString
	var trialEnd sql.NullTime
	if err := row.Scan(&u.UUID, &u.AuthID, &u.Email, &u.Username, &u.PasswordHash, &u.Phone,
		&customerRef, &tokenRef, &trialEnd, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CustomerRef = customerRef.String
	u.TokenRef = tokenRef.String
	u.TrialEndDate = timePtr(trialEnd)
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (auth_id, email, username, password_hash, phone)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid`
	err := s.DB.QueryRowContext(ctx, query,
		user.AuthID, user.Email, user.Username, user.PasswordHash, user.Phone).Scan(&newID)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return "", fmt.Errorf("%s: %w", op, models.ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func (s *Storage) getUserBy(ctx context.Context, op, column, value string) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUser", "uid", userUID)
}

// GetUserByAuthID возвращает пользователя по внешнему идентификатору.
func (s *Storage) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByAuthID", "auth_id", authID)
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "storage.GetUserByEmail", "email", email)
}

// SetCustomerRef сохраняет ссылку на клиента шлюза, только если она ещё не задана.
// Возвращает ссылку, которая в итоге хранится у пользователя: при гонке
// двух регистраций обе получают первую сохранённую.
func (s *Storage) SetCustomerRef(ctx context.Context, userUID, customerRef, phone string) (string, error) {
	const op = "storage.SetCustomerRef"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET customer_ref = $2, phone = $3
			  WHERE uid = $1 AND (customer_ref IS NULL OR customer_ref = '')
			  RETURNING customer_ref`
	var stored string
	err := s.DB.QueryRowContext(ctx, query, userUID, customerRef, phone).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var existing sql.NullString
	err = s.DB.QueryRowContext(ctx, `SELECT customer_ref FROM users WHERE uid = $1`, userUID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return existing.String, nil
}

// SaveToken сохраняет токен платёжного метода и дату окончания пробного периода.
func (s *Storage) SaveToken(ctx context.Context, userUID, tokenRef string, trialEnd time.Time) error {
	const op = "storage.SaveToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET token_ref = $2, trial_end_date = $3
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, tokenRef, trialEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
