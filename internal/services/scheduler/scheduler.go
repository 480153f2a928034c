// Package services ищет подписки с заканчивающимся пробным периодом и
// публикует напоминания в очередь уведомлений.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// SubscriptionRepository выборка пробных подписок по дате окончания.
type SubscriptionRepository interface {
	ListTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]*models.TrialEndingNotice, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService раз в сутки рассылает напоминания о конце пробного периода.
type SchedulerService struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	interval  time.Duration
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		interval:  24 * time.Hour,
		now:       time.Now,
	}
}

// Run выполняет проход сразу и затем раз в сутки до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnceLogged(ctx)
		}
	}
}

func (s *SchedulerService) runOnceLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("trial reminder pass failed", sl.Err(err))
	}
}

// RunOnce публикует напоминания по пробным периодам, которые заканчиваются
// завтра, то есть в окне [now+24h, now+48h). Возвращает число
// опубликованных сообщений. Ошибка публикации одного сообщения не
// останавливает проход.
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	const op = "services.scheduler.RunOnce"
	log := s.log.With(slog.String("op", op))

	from := s.now().Add(24 * time.Hour)
	notices, err := s.repo.ListTrialsEndingBetween(ctx, from, from.Add(s.interval))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(notices) == 0 {
		log.Info("no trials ending tomorrow")
		return 0, nil
	}

	log.Info("found trials ending tomorrow", slog.Int("count", len(notices)))
	published := 0
	for _, n := range notices {
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingTrialEnding, n); err != nil {
			log.Error("failed to publish trial reminder", slog.Int64("group_id", n.GroupID), sl.Err(err))
			continue
		}
		published++
	}
	return published, nil
}
