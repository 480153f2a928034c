// Package nexus собирает HTTP-приложение платформы: хранилище, кэш,
// брокер, клиент платёжного шлюза, сервисы и маршруты.
package nexus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/nexus/internal/cache"
	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/health"
	"github.com/magabrotheeeer/nexus/internal/lib/jwt"
	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/metrics"
	"github.com/magabrotheeeer/nexus/internal/migrations"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
	adminservice "github.com/magabrotheeeer/nexus/internal/services/admin"
	authservice "github.com/magabrotheeeer/nexus/internal/services/auth"
	groupservice "github.com/magabrotheeeer/nexus/internal/services/group"
	paymentservice "github.com/magabrotheeeer/nexus/internal/services/payment"
	subservice "github.com/magabrotheeeer/nexus/internal/services/subscription"
	"github.com/magabrotheeeer/nexus/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение платформы.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	cache   *cache.Cache
	conn    *amqp.Connection
	ch      *amqp.Channel
	sweeper *IntentSweeper
}

// New поднимает зависимости и собирает маршруты. При ошибке уже открытые
// соединения закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = cacheRedis.Close()
		}
	}()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	billingMetrics := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)
	provider := paymentprovider.NewClient(cfg.Razorpay)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	groupService := groupservice.NewService(db, provider, publisher, billingMetrics, cfg.Billing, logger)
	services := Services{
		Auth:         authservice.NewService(db, db, jwtMaker, publisher, cfg.Admin, logger),
		Admin:        adminservice.NewService(db, publisher, logger),
		Group:        groupService,
		Subscription: subservice.NewService(db, cacheRedis, provider, billingMetrics, cfg.CacheTTL, logger),
		Payment:      paymentservice.NewService(db, provider, cfg.Billing, logger),
		Provider:     provider,
		Pingers: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		cache:   cacheRedis,
		conn:    conn,
		ch:      ch,
		sweeper: NewIntentSweeper(groupService, cfg.IntentTimeout, logger),
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
// и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.sweeper.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	stopSweep()
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
