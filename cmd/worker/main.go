package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/campaign"
	"github.com/unclebandit/bulksender/internal/config"
	"github.com/unclebandit/bulksender/internal/content"
	"github.com/unclebandit/bulksender/internal/db"
	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/hours"
	"github.com/unclebandit/bulksender/internal/provider"
	"github.com/unclebandit/bulksender/internal/queue"
	"github.com/unclebandit/bulksender/internal/repository"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.Open(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer conn.Close()

	var notifier events.Notifier = events.Noop{}
	if rdb, err := db.OpenRedis(ctx, cfg.RedisURL, log); err != nil {
		log.Warn("redis unavailable, status events disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		notifier = events.NewRedisNotifier(rdb, log)
	}

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer amqpConn.Close()

	q, err := queue.NewAMQP(amqpConn, cfg.QueueMaxRetries, log)
	if err != nil {
		log.Fatal("failed to open queue channel", zap.Error(err))
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}

	// Adapters normally arrive from the channel-management subsystem;
	// the worker wires the HTTP gateway one itself when configured.
	registry := provider.NewRegistry()
	if cfg.GatewayURL != "" {
		adapter := provider.RateLimit(
			provider.NewHTTPAdapter(cfg.GatewayURL, cfg.GatewayToken),
			cfg.ProviderSendsPerMinute,
		)
		registry.Register(cfg.GatewayCompanyID, adapter)
		log.Info("registered http gateway adapter", zap.Int("company_id", cfg.GatewayCompanyID))
	}

	var paraphraser content.Paraphraser
	if cfg.ParaphraseURL != "" {
		paraphraser = content.NewHTTPParaphraser(cfg.ParaphraseURL, cfg.ParaphraseTimeout)
	}

	completion := &campaign.Completion{
		Campaigns:  campaignRepo,
		Deliveries: deliveryRepo,
		Notifier:   notifier,
		Log:        log,
	}
	preparer := &campaign.Preparer{
		Campaigns:  campaignRepo,
		Deliveries: deliveryRepo,
		Contacts:   contactRepo,
		Settings:   settingsRepo,
		Resolver:   content.NewResolver(paraphraser, log),
		Queue:      q,
		Completion: completion,
		Notifier:   notifier,
		Log:        log,
	}
	dispatcher := &campaign.Dispatcher{
		Campaigns:  campaignRepo,
		Deliveries: deliveryRepo,
		Contacts:   contactRepo,
		Providers:  registry,
		Window:     hours.Window{Start: cfg.BusinessHourStart, End: cfg.BusinessHourEnd},
		Queue:      q,
		Completion: completion,
		Log:        log,
	}
	scheduler := &campaign.Scheduler{
		Campaigns: campaignRepo,
		Queue:     q,
		Lookahead: cfg.LookaheadWindow,
		Log:       log,
	}

	if err := q.Subscribe(campaign.TopicPrepare, preparer.Handle); err != nil {
		log.Fatal("failed to subscribe preparer", zap.Error(err))
	}
	if err := q.Subscribe(campaign.TopicDispatch, dispatcher.Handle); err != nil {
		log.Fatal("failed to subscribe dispatcher", zap.Error(err))
	}

	c := cron.New()
	if _, err := c.AddFunc("@every "+cfg.SweepInterval.String(), func() { scheduler.Sweep(ctx) }); err != nil {
		log.Fatal("failed to register sweep", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	log.Info("worker running, waiting for jobs")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down worker")
}
