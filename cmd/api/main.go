package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/app"
	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/http/router"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/seed"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api encerrada com erro", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vocab, err := cfg.Vocabularies()
	if err != nil {
		return err
	}

	// 1. Repositórios
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	if cfg.SeedDemo && cfg.DatabaseDriver == "memory" {
		seeder := seed.NewSeeder(stores.Leads, stores.Clients, stores.Calls, vocab, log)
		for _, crm := range []string{"gold", "clock-stock"} {
			if _, err := seeder.Run(ctx, seed.DefaultConfig(crm)); err != nil {
				return err
			}
		}
	}

	// 2. Redis (trava de conversão)
	var guard usecase.ConversionGuard = cache.NewLocalGuard()
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		guard = cache.NewRedisGuard(redisClient, cache.DefaultGuardTTL)
	}

	// 3. Notificações
	var notifier usecase.Notifier = mail.LogNotifier{Logger: log}
	if cfg.MailHost != "" {
		notifier = mail.NewNotifier(mail.NewEmailSender(
			cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom, cfg.NotifyTo,
		))
	}

	// 4. RabbitMQ: producer + worker
	var publisher usecase.EventPublisher = queue.NopPublisher{}
	var rabbitConn *amqp091.Connection
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		rabbitConn = rabbitMQ.Conn
		publisher = queue.NewProducer(rabbitMQ.Ch)

		consumerCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			return err
		}
		defer consumerCh.Close()
		w := queue.NewWorker(consumerCh, notifier, log)
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				log.Error("worker parou", "error", err)
			}
		}()
	}

	// 5. UseCases
	browseUC := usecase.NewBrowseUseCase(stores.Leads, stores.Clients, stores.Calls, log)
	createLeadUC := usecase.NewCreateLeadUseCase(stores.Leads, vocab, log)
	updateLeadUC := usecase.NewUpdateLeadUseCase(stores.Leads, vocab, log)
	updateClientUC := usecase.NewUpdateClientUseCase(stores.Clients, vocab, log)
	commentUC := usecase.NewAddCommentUseCase(stores.Leads, stores.Clients, log)
	convertUC := usecase.NewConvertLeadUseCase(stores.Leads, stores.Clients, publisher, guard, vocab, cfg.Policy(), log)
	logCallUC := usecase.NewLogCallUseCase(stores.Calls, stores.Leads, stores.Clients, vocab, log)
	reportUC := usecase.NewReportUseCase(stores.Leads, stores.Clients, stores.Calls, vocab, log)
	followUpUC := usecase.NewFollowUpReminderUseCase(stores.Leads, notifier, log)

	// 6. Cron de follow-ups
	followUps := worker.NewFollowUpWorker(followUpUC, cfg.FollowUpSchedule, log)
	go func() {
		if err := followUps.Start(ctx); err != nil {
			log.Error("follow-up worker parou", "error", err)
		}
	}()

	// 7. Handlers
	var redisPing interface{ Ping(context.Context) error }
	if redisClient != nil {
		redisPing = redisClient
	}
	h := router.Handlers{
		Health:     handlers.NewHealthHandler(stores.DB, rabbitConn, redisPing, cfg.DatabaseDriver),
		Vocabulary: handlers.NewVocabularyHandler(vocab),
		Lead:       handlers.NewLeadHandler(browseUC, createLeadUC, updateLeadUC, commentUC, convertUC, vocab, log),
		Client:     handlers.NewClientHandler(browseUC, updateClientUC, commentUC, log),
		Call:       handlers.NewCallHandler(browseUC, logCallUC, log),
		Report:     handlers.NewReportHandler(reportUC, log),
	}

	// 8. Router
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.APIPort,
		Handler: router.New(h, router.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL()),
			Limiter:        limiter,
			AccessLog:      true,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🔥 CRM API rodando", "port", cfg.APIPort, "driver", cfg.DatabaseDriver, "vocabulary", vocab.Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("desligando...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
