// Package scheduler собирает приложение планировщика напоминаний о конце
// пробного периода.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/nexus/internal/services/scheduler"
	"github.com/magabrotheeeer/nexus/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a := &App{conn: conn, logger: logger}
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		a := &App{conn: conn, ch: ch, logger: logger}
		a.close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := repository.CheckDatabaseReady(ctx, db); err != nil {
		a := &App{db: db, conn: conn, ch: ch, logger: logger}
		a.close()
		return nil, err
	}

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(db, rabbitmq.NewPublisher(ch), logger),
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
