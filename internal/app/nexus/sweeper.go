package nexus

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/nexus/internal/lib/sl"
)

// IntentRecoverer завершает зависшие записи журнала создания групп.
type IntentRecoverer interface {
	RecoverStaleIntents(ctx context.Context, olderThan time.Duration) (int, error)
}

// IntentSweeper периодически компенсирует создания групп, которые
// не дошли до конца за timeout, например из-за падения процесса.
type IntentSweeper struct {
	recoverer IntentRecoverer
	timeout   time.Duration
	interval  time.Duration
	log       *slog.Logger
}

// NewIntentSweeper создаёт sweeper. Проход выполняется раз в timeout.
func NewIntentSweeper(recoverer IntentRecoverer, timeout time.Duration, log *slog.Logger) *IntentSweeper {
	return &IntentSweeper{
		recoverer: recoverer,
		timeout:   timeout,
		interval:  timeout,
		log:       log,
	}
}

// Run выполняет проходы до отмены ctx. Первый проход сразу после старта.
func (s *IntentSweeper) Run(ctx context.Context) {
	const op = "nexus.IntentSweeper.Run"
	log := s.log.With(slog.String("op", op))

	if s.interval <= 0 {
		log.Warn("intent sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		n, err := s.recoverer.RecoverStaleIntents(ctx, s.timeout)
		switch {
		case err != nil:
			log.Error("failed to recover stale intents", sl.Err(err))
		case n > 0:
			log.Info("stale intents recovered", slog.Int("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
