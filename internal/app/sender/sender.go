// Package sender собирает приложение рассылки: читает события из очередей
// уведомлений и отправляет письма по SMTP.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/nexus/internal/services/sender"
)

// App приложение рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// Run потребляет очереди до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler func([]byte) error
	}{
		{queue: rabbitmq.QueueGroupCreated, handler: a.senderService.SendGroupCreated},
		{queue: rabbitmq.QueueOwnerApplication, handler: a.senderService.SendApplicationNotice},
		{queue: rabbitmq.QueueTrialEnding, handler: a.senderService.SendTrialEnding},
	}
	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, c.queue, c.handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", c.queue), sl.Err(err))
			a.close()
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
