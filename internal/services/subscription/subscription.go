// Package services читает статус подписки группы, отменяет подписку
// владельцем и применяет события шлюза.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/metrics"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

// События шлюза, которые меняют подписку.
const (
	EventActivated = "subscription.activated"
	EventCharged   = "subscription.charged"
	EventCancelled = "subscription.cancelled"
	EventCompleted = "subscription.completed"
)

// Repository хранилище подписок.
type Repository interface {
	GetSubscriptionByGroup(ctx context.Context, groupID int64) (*models.Subscription, error)
	CancelSubscriptionsByGroup(ctx context.Context, groupID int64, at time.Time) (int64, error)
	UpdateSubscriptionByExternalRef(ctx context.Context, externalRef string,
		status models.SubscriptionStatus, nextBilling *time.Time, at time.Time) (int64, error)
}

// Cache кэш подписок по группе.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Gateway отмена подписки в шлюзе.
type Gateway interface {
	CancelSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// Service читатель статуса и координатор отмены.
type Service struct {
	repo     Repository
	cache    Cache
	gateway  Gateway
	metrics  metrics.BillingMetrics
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewService создаёт сервис подписок.
func NewService(repo Repository, cache Cache, gateway Gateway, m metrics.BillingMetrics,
	cacheTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		gateway:  gateway,
		metrics:  m,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func cacheKey(groupID int64) string {
	return "subscription:group:" + strconv.FormatInt(groupID, 10)
}

// load читает подписку через кэш. Ошибки кэша не прерывают чтение.
func (s *Service) load(ctx context.Context, groupID int64) (*models.Subscription, error) {
	const op = "services.subscription.load"
	key := cacheKey(groupID)

	var cached models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("op", op), slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscriptionByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, key, sub, s.cacheTTL); err != nil {
		s.log.Warn("cache write failed", slog.String("op", op), slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

func (s *Service) invalidate(ctx context.Context, groupID int64) {
	if err := s.cache.Invalidate(ctx, cacheKey(groupID)); err != nil {
		s.log.Warn("cache invalidate failed", slog.Int64("group_id", groupID), sl.Err(err))
	}
}

func owns(principal *models.Principal, sub *models.Subscription) bool {
	return principal.Is(models.KindEndUser) && principal.ID == sub.OwnerAuthID
}

// GetStatus возвращает статус подписки группы на текущий момент.
// Читать может владелец группы или администратор.
func (s *Service) GetStatus(ctx context.Context, groupID int64, principal *models.Principal) (*models.StatusView, error) {
	const op = "services.subscription.GetStatus"
	if principal == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	sub, err := s.load(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !principal.Is(models.KindAdmin) && !owns(principal, sub) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	view := sub.View(s.now())
	return &view, nil
}

// Cancel отменяет подписку группы в шлюзе и локально. Если шлюз вернул
// ошибку, локальная запись не меняется. Повторная отмена успешна
// и сохраняет первое время отмены.
func (s *Service) Cancel(ctx context.Context, groupID int64, principal *models.Principal) error {
	const op = "services.subscription.Cancel"
	log := s.log.With(slog.String("op", op), slog.Int64("group_id", groupID))

	if principal == nil {
		return fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	sub, err := s.repo.GetSubscriptionByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !owns(principal, sub) {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	if sub.ExternalRef != "" && sub.Status != models.StatusCancelled {
		if _, err := s.gateway.CancelSubscription(ctx, sub.ExternalRef); err != nil {
			log.Error("failed to cancel gateway subscription", slog.String("external_ref", sub.ExternalRef), sl.Err(err))
			s.metrics.IncGatewayFailure("cancel_subscription")
			return fmt.Errorf("%s: %w: %w", op, models.ErrGatewayFailure, err)
		}
	}

	n, err := s.repo.CancelSubscriptionsByGroup(ctx, groupID, s.now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, groupID)
	s.metrics.IncCancellation()
	log.Info("subscription cancelled", slog.Int64("rows", n))
	return nil
}

// ApplyWebhookEvent обновляет подписку по событию шлюза. Неизвестные события
// и подписки, которых нет в хранилище, пропускаются.
func (s *Service) ApplyWebhookEvent(ctx context.Context, event paymentprovider.WebhookEvent) error {
	const op = "services.subscription.ApplyWebhookEvent"
	entity := event.Payload.Subscription.Entity
	log := s.log.With(slog.String("op", op), slog.String("event", event.Event), slog.String("external_ref", entity.ID))

	var (
		status      models.SubscriptionStatus
		nextBilling *time.Time
	)
	switch event.Event {
	case EventActivated, EventCharged:
		status = models.StatusActive
		if entity.ChargeAt > 0 {
			t := time.Unix(entity.ChargeAt, 0).UTC()
			nextBilling = &t
		} else if entity.CurrentEnd > 0 {
			t := time.Unix(entity.CurrentEnd, 0).UTC()
			nextBilling = &t
		}
	case EventCancelled, EventCompleted:
		status = models.StatusCancelled
	default:
		log.Debug("webhook event ignored")
		return nil
	}
	s.metrics.IncWebhook(event.Event)

	if entity.ID == "" {
		return fmt.Errorf("%s: subscription id is empty: %w", op, models.ErrInvalidInput)
	}

	at := s.now()
	if event.CreatedAt > 0 {
		at = time.Unix(event.CreatedAt, 0).UTC()
	}
	groupID, err := s.repo.UpdateSubscriptionByExternalRef(ctx, entity.ID, status, nextBilling, at)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("webhook for unknown subscription")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, groupID)
	log.Info("subscription updated from webhook", slog.Int64("group_id", groupID), slog.String("status", string(status)))
	return nil
}
