package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const applicationColumns = `id, name, email, phone, password_hash, status, review_note, reviewed_at, created_at`

func scanApplication(row rowScanner) (*models.OwnerApplication, error) {
	a := &models.OwnerApplication{}
	var reviewedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Status, &a.ReviewNote, &reviewedAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ReviewedAt = timePtr(reviewedAt)
	return a, nil
}

// CreateApplication сохраняет заявку владельца и возвращает её ID.
func (s *Storage) CreateApplication(ctx context.Context, app models.OwnerApplication) (string, error) {
	const op = "storage.CreateApplication"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO owner_applications (name, email, phone, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id string
	err := s.DB.QueryRowContext(ctx, query, app.Name, app.Email, app.Phone, app.PasswordHash).Scan(&id)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return "", fmt.Errorf("%s: %w", op, models.ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Storage) getApplicationBy(ctx context.Context, op, column, value string) (*models.OwnerApplication, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + applicationColumns + ` FROM owner_applications WHERE ` + column + ` = $1`
	a, err := scanApplication(s.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetApplication возвращает заявку по ID.
func (s *Storage) GetApplication(ctx context.Context, id string) (*models.OwnerApplication, error) {
	return s.getApplicationBy(ctx, "storage.GetApplication", "id", id)
}

// GetApplicationByEmail возвращает заявку по email.
func (s *Storage) GetApplicationByEmail(ctx context.Context, email string) (*models.OwnerApplication, error) {
	return s.getApplicationBy(ctx, "storage.GetApplicationByEmail", "email", email)
}

// ListApplications возвращает заявки, при непустом status только с этим статусом.
func (s *Storage) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.OwnerApplication, error) {
	const op = "storage.ListApplications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + applicationColumns + ` FROM owner_applications
			  WHERE $1::text = '' OR status = $1::text
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.OwnerApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReviewApplication фиксирует решение по заявке в статусе PENDING.
// Для уже рассмотренной заявки возвращает models.ErrAlreadyReviewed.
func (s *Storage) ReviewApplication(ctx context.Context, id string, status models.ApplicationStatus, note string) (*models.OwnerApplication, error) {
	const op = "storage.ReviewApplication"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE owner_applications
			  SET status = $2, review_note = $3, reviewed_at = now()
			  WHERE id = $1 AND status = 'PENDING'
			  RETURNING ` + applicationColumns
	a, err := scanApplication(s.DB.QueryRowContext(ctx, query, id, string(status), note))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.GetApplication(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrAlreadyReviewed)
}
