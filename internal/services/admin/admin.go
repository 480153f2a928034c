// Package services реализует рассмотрение заявок владельцев администратором.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// ApplicationRepository интерфейс репозитория заявок.
type ApplicationRepository interface {
	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.OwnerApplication, error)
	ReviewApplication(ctx context.Context, id string, status models.ApplicationStatus, note string) (*models.OwnerApplication, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service сервис администратора.
type Service struct {
	apps      ApplicationRepository
	publisher Publisher
	log       *slog.Logger
}

// NewService создаёт сервис администратора.
func NewService(apps ApplicationRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{apps: apps, publisher: publisher, log: log}
}

// ListApplications возвращает заявки в статусе status, при пустом статусе возвращаются все.
func (s *Service) ListApplications(ctx context.Context, status string) ([]*models.OwnerApplication, error) {
	const op = "services.admin.ListApplications"
	st := models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case "", models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
	default:
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, status, models.ErrInvalidInput)
	}

	apps, err := s.apps.ListApplications(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if apps == nil {
		apps = []*models.OwnerApplication{}
	}
	return apps, nil
}

// Approve одобряет заявку.
func (s *Service) Approve(ctx context.Context, id, note string) (*models.OwnerApplication, error) {
	return s.review(ctx, id, models.ApplicationApproved, note)
}

// Reject отклоняет заявку.
func (s *Service) Reject(ctx context.Context, id, note string) (*models.OwnerApplication, error) {
	return s.review(ctx, id, models.ApplicationRejected, note)
}

func (s *Service) review(ctx context.Context, id string, status models.ApplicationStatus, note string) (*models.OwnerApplication, error) {
	const op = "services.admin.review"
	log := s.log.With(slog.String("op", op), slog.String("application_id", id))

	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	app, err := s.apps.ReviewApplication(ctx, id, status, note)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("application reviewed", slog.String("status", string(status)))

	decision := models.ApplicationDecision{
		ApplicationID: app.ID,
		Email:         app.Email,
		Name:          app.Name,
		Status:        app.Status,
		Note:          app.ReviewNote,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingOwnerApplication, decision); err != nil {
		log.Warn("failed to publish application decision", sl.Err(err))
	}
	return app, nil
}
