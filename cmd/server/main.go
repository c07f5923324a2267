package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/config"
	"github.com/unclebandit/bulksender/internal/controller"
	"github.com/unclebandit/bulksender/internal/db"
	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/repository"
	"github.com/unclebandit/bulksender/internal/service"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx := context.Background()

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

	campaignService := &service.CampaignService{
		CampaignRepo: &repository.CampaignRepository{DB: conn},
		DeliveryRepo: &repository.DeliveryRepository{DB: conn},
		ContactRepo:  &repository.ContactRepository{DB: conn},
		SettingsRepo: &repository.SettingsRepository{DB: conn},
		Notifier:     notifier,
		Log:          log,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		Log:             log,
	}

	r := chi.NewRouter()
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/{id}/schedule", campaignController.ScheduleCampaign)
	r.Post("/campaigns/{id}/cancel", campaignController.CancelCampaign)
	r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)

	log.Info("server running", zap.String("port", cfg.APIPort))
	if err := http.ListenAndServe(":"+cfg.APIPort, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
