// Package services реализует создание группы вместе с подпиской в шлюзе,
// каталог групп и вступление в группы.
//
// Создание группы выполняется как сага из двух шагов с журналом в group_creation_intents:
//
//	pending -> group_created -> completed
//	                         -> compensated | compensation_failed
//	pending -> failed
//
// Запись журнала с тем же ключом идемпотентности возвращает результат
// первого запроса. Пока у владельца есть незавершённая запись, новая
// не открывается.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/metrics"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	staleBatch       = 100
)

// Repository хранилище групп, подписок и журнала создания.
type Repository interface {
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetApplication(ctx context.Context, id string) (*models.OwnerApplication, error)

	OpenIntent(ctx context.Context, ownerUID, idempotencyKey string) (*models.GroupCreationIntent, bool, error)
	MarkIntentGroupCreated(ctx context.Context, id string, groupID int64) error
	SetIntentExternalRef(ctx context.Context, id, externalRef string) error
	FinishIntent(ctx context.Context, id string, state models.IntentState, reason string) error
	ListStaleIntents(ctx context.Context, before time.Time, limit int) ([]*models.GroupCreationIntent, error)
	CompleteGroupBilling(ctx context.Context, intentID string, sub models.Subscription) (*models.Subscription, error)

	CreateGroup(ctx context.Context, group models.Group) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	GetSubscriptionByGroup(ctx context.Context, groupID int64) (*models.Subscription, error)
	ExploreGroups(ctx context.Context, filter models.ExploreFilter) ([]*models.GroupWithMembers, int, error)
	JoinGroup(ctx context.Context, groupID int64, userUID string) error
	ListGroupsByOwnerEmail(ctx context.Context, email string) ([]*models.GroupWithSubscription, error)
}

// Gateway операции шлюза с подписками.
type Gateway interface {
	CreateSubscription(ctx context.Context, req paymentprovider.CreateSubscriptionRequest) (*paymentprovider.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service оркестратор создания групп.
type Service struct {
	repo      Repository
	gateway   Gateway
	publisher Publisher
	metrics   metrics.BillingMetrics
	billing   config.Billing
	log       *slog.Logger
	now       func() time.Time
}

// NewService создаёт оркестратор.
func NewService(repo Repository, gateway Gateway, publisher Publisher, m metrics.BillingMetrics,
	billing config.Billing, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		billing:   billing,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) endUser(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil {
		return nil, models.ErrUnauthorized
	}
	if !principal.Is(models.KindEndUser) {
		return nil, models.ErrForbidden
	}
	u, err := s.repo.GetUserByAuthID(ctx, principal.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	return u, err
}

// CreateGroupWithBilling создаёт группу и её подписку. Если шлюз не создал
// подписку, группа удаляется и возвращается models.ErrGatewayFailure.
func (s *Service) CreateGroupWithBilling(ctx context.Context, principal *models.Principal,
	idempotencyKey string, data models.DummyGroup) (*models.GroupWithSubscription, error) {
	const op = "services.group.CreateGroupWithBilling"
	log := s.log.With(slog.String("op", op))

	owner, err := s.endUser(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !owner.HasPaymentMethod() {
		return nil, fmt.Errorf("%s: %w", op, models.NewPaymentMethodRequired())
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	intent, created, err := s.repo.OpenIntent(ctx, owner.UUID, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.String("intent_id", intent.ID))
	if !created {
		return s.replay(ctx, intent)
	}

	group, err := s.repo.CreateGroup(ctx, data.ToGroup(owner.UUID))
	if err != nil {
		s.finish(ctx, log, intent.ID, models.IntentFailed, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.MarkIntentGroupCreated(ctx, intent.ID, group.ID); err != nil {
		s.compensate(ctx, log, intent.ID, group.ID, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gwSub, err := s.gateway.CreateSubscription(ctx, s.subscriptionRequest(owner, group))
	if err != nil {
		log.Error("failed to create gateway subscription", slog.Int64("group_id", group.ID), sl.Err(err))
		s.metrics.IncGatewayFailure("create_subscription")
		s.compensate(ctx, log, intent.ID, group.ID, err)
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrGatewayFailure, err)
	}
	if err := s.repo.SetIntentExternalRef(ctx, intent.ID, gwSub.ID); err != nil {
		log.Warn("failed to remember gateway subscription on intent",
			slog.String("external_ref", gwSub.ID), sl.Err(err))
	}

	sub, err := s.repo.CompleteGroupBilling(ctx, intent.ID, s.localSubscription(owner, group, gwSub))
	if err != nil {
		log.Error("failed to store subscription", slog.Int64("group_id", group.ID), sl.Err(err))
		if _, cancelErr := s.gateway.CancelSubscription(ctx, gwSub.ID); cancelErr != nil {
			log.Error("failed to cancel orphan gateway subscription",
				slog.String("external_ref", gwSub.ID), sl.Err(cancelErr))
		}
		s.compensate(ctx, log, intent.ID, group.ID, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncGroupCreated()
	log.Info("group created", slog.Int64("group_id", group.ID), slog.String("external_ref", sub.ExternalRef))

	event := models.GroupCreatedEvent{
		GroupID:      group.ID,
		GroupName:    group.Name,
		Email:        owner.Email,
		Username:     owner.Username,
		TrialEndDate: sub.TrialEndDate,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingGroupCreated, event); err != nil {
		log.Warn("failed to publish group created event", sl.Err(err))
	}

	return &models.GroupWithSubscription{Group: group, Subscription: sub}, nil
}

// replay отвечает на повтор запроса с уже использованным ключом.
func (s *Service) replay(ctx context.Context, intent *models.GroupCreationIntent) (*models.GroupWithSubscription, error) {
	const op = "services.group.replay"
	switch {
	case intent.InFlight():
		return nil, fmt.Errorf("%s: %w", op, models.ErrRequestInFlight)
	case intent.State == models.IntentCompleted && intent.GroupID != nil:
		group, err := s.repo.GetGroup(ctx, *intent.GroupID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub, err := s.repo.GetSubscriptionByGroup(ctx, *intent.GroupID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &models.GroupWithSubscription{Group: group, Subscription: sub}, nil
	default:
		return nil, fmt.Errorf("%s: previous attempt ended in state %s: %w", op, intent.State, models.ErrGatewayFailure)
	}
}

func (s *Service) subscriptionRequest(owner *models.User, group *models.Group) paymentprovider.CreateSubscriptionRequest {
	req := paymentprovider.CreateSubscriptionRequest{
		PlanID:         s.billing.PlanID,
		CustomerID:     owner.CustomerRef,
		TotalCount:     s.billing.TotalCount,
		CustomerNotify: 1,
		Notes: map[string]string{
			"group_id":  strconv.FormatInt(group.ID, 10),
			"owner_uid": owner.UUID,
		},
	}
	if owner.TrialEndDate != nil && owner.TrialEndDate.After(s.now()) {
		req.StartAt = owner.TrialEndDate.Unix()
	}
	return req
}

func (s *Service) localSubscription(owner *models.User, group *models.Group, gw *paymentprovider.Subscription) models.Subscription {
	sub := models.Subscription{
		GroupID:      group.ID,
		Status:       models.StatusActive,
		TrialEndDate: owner.TrialEndDate,
		Price:        s.billing.Price,
		Currency:     s.billing.Currency,
		ExternalRef:  gw.ID,
	}
	if owner.TrialEndDate != nil && owner.TrialEndDate.After(s.now()) {
		sub.Status = models.StatusTrial
		next := *owner.TrialEndDate
		sub.NextBillingDate = &next
	}
	if gw.ChargeAt > 0 {
		next := time.Unix(gw.ChargeAt, 0).UTC()
		sub.NextBillingDate = &next
	}
	return sub
}

// compensate удаляет созданную группу и закрывает запись журнала.
func (s *Service) compensate(ctx context.Context, log *slog.Logger, intentID string, groupID int64, cause error) {
	// Компенсация выполняется и после отмены запроса клиентом.
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.DeleteGroup(ctx, groupID); err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Error("failed to delete group during compensation", slog.Int64("group_id", groupID), sl.Err(err))
		s.metrics.IncCompensation("failed")
		s.finish(ctx, log, intentID, models.IntentCompensationFailed, errors.Join(cause, err))
		return
	}
	s.metrics.IncCompensation("ok")
	s.finish(ctx, log, intentID, models.IntentCompensated, cause)
}

func (s *Service) finish(ctx context.Context, log *slog.Logger, intentID string, state models.IntentState, cause error) {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	if err := s.repo.FinishIntent(context.WithoutCancel(ctx), intentID, state, reason); err != nil {
		log.Error("failed to finish intent", slog.String("state", string(state)), sl.Err(err))
	}
}

// RecoverStaleIntents компенсирует записи журнала, зависшие в незавершённом
// состоянии дольше olderThan, например после падения процесса.
func (s *Service) RecoverStaleIntents(ctx context.Context, olderThan time.Duration) (int, error) {
	const op = "services.group.RecoverStaleIntents"
	log := s.log.With(slog.String("op", op))

	intents, err := s.repo.ListStaleIntents(ctx, s.now().Add(-olderThan), staleBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	recovered := 0
	for _, intent := range intents {
		l := log.With(slog.String("intent_id", intent.ID))
		cause := errors.New("recovered after timeout")
		if intent.State != models.IntentGroupCreated || intent.GroupID == nil {
			s.finish(ctx, l, intent.ID, models.IntentFailed, cause)
			recovered++
			continue
		}
		// Подписка в шлюзе могла пережить падение: без её отмены группа
		// не компенсируется, запись останется до следующего прохода.
		if intent.ExternalRef != "" {
			if _, err := s.gateway.CancelSubscription(context.WithoutCancel(ctx), intent.ExternalRef); err != nil {
				l.Error("failed to cancel gateway subscription of stale intent",
					slog.String("external_ref", intent.ExternalRef), sl.Err(err))
				s.metrics.IncGatewayFailure("cancel_subscription")
				continue
			}
		}
		s.compensate(ctx, l, intent.ID, *intent.GroupID, cause)
		recovered++
	}
	if recovered > 0 {
		log.Info("stale intents recovered", slog.Int("count", recovered))
	}
	return recovered, nil
}

// Explore возвращает страницу каталога публичных групп.
func (s *Service) Explore(ctx context.Context, filter models.ExploreFilter) (*models.ExplorePage, error) {
	const op = "services.group.Explore"
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	groups, total, err := s.repo.ExploreGroups(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ExplorePage{
		Groups:     groups,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Join добавляет пользователя в группу.
func (s *Service) Join(ctx context.Context, principal *models.Principal, groupID int64) error {
	const op = "services.group.Join"
	u, err := s.endUser(ctx, principal)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.JoinGroup(ctx, groupID, u.UUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// OwnerGroups возвращает группы одобренного владельца.
func (s *Service) OwnerGroups(ctx context.Context, principal *models.Principal) ([]*models.GroupWithSubscription, error) {
	const op = "services.group.OwnerGroups"
	if principal == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if !principal.Is(models.KindOwner) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if err := uuid.Validate(principal.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	app, err := s.repo.GetApplication(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if app.Status != models.ApplicationApproved {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	groups, err := s.repo.ListGroupsByOwnerEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if groups == nil {
		groups = []*models.GroupWithSubscription{}
	}
	return groups, nil
}
