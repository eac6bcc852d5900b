package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/internal/auctions"
	"github.com/haythemsaa/boxibox-backend/internal/bids"
	"github.com/haythemsaa/boxibox-backend/internal/billing"
	"github.com/haythemsaa/boxibox-backend/internal/marketplace"
	"github.com/haythemsaa/boxibox-backend/internal/notices"
	"github.com/haythemsaa/boxibox-backend/internal/settings"
	"github.com/haythemsaa/boxibox-backend/internal/settlement"
	"github.com/haythemsaa/boxibox-backend/internal/sweep"
	"github.com/haythemsaa/boxibox-backend/pkg/config"
	"github.com/haythemsaa/boxibox-backend/pkg/db"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/metrics"
	"github.com/haythemsaa/boxibox-backend/pkg/migrate"
	"github.com/haythemsaa/boxibox-backend/pkg/redis"
)

const serviceName = "auction-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sender, err := notices.NewSMTPSender(cfg.Notices)
	if err != nil {
		logg.Error(context.Background(), "failed to configure mail transport", err)
		os.Exit(1)
	}

	selector, err := marketplace.NewSelector(cfg.Marketplace)
	if err != nil {
		logg.Error(context.Background(), "failed to configure marketplace clients", err)
		os.Exit(1)
	}

	provider, err := billing.NewProvider(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to configure billing provider", err)
		os.Exit(1)
	}

	noticeRepo := notices.NewRepository(dbClient.DB())
	noticeSvc, err := notices.NewService(notices.ServiceParams{
		Repo:   noticeRepo,
		Sender: sender,
		Logger: logg,
		Config: cfg.Notices,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notice service", err)
		os.Exit(1)
	}

	settlementSvc, err := settlement.NewService(settlement.ServiceParams{
		Repo:     settlement.NewRepository(dbClient.DB()),
		Releaser: provider,
		Closer:   provider,
		Notices:  noticeSvc,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement processor", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	bidRepo := bids.NewRepository(dbClient.DB())
	auctionSvc, err := auctions.NewService(auctions.ServiceParams{
		Logger:     logg,
		DB:         dbClient,
		Repo:       auctions.NewRepository(dbClient.DB()),
		NoticeRepo: noticeRepo,
		Notices:    noticeSvc,
		Bids: func(tx *gorm.DB) auctions.BidStore {
			return bidRepo.WithTx(tx)
		},
		Settlement:  settlementSvc,
		Contracts:   provider,
		Settings:    settingsSvc,
		Marketplace: selector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auction service", err)
		os.Exit(1)
	}

	delinquencyJob, err := sweep.NewDelinquencyJob(sweep.DelinquencyJobParams{
		Logger:    logg,
		Settings:  settingsSvc,
		Contracts: provider,
		Invoices:  provider,
		Auctions:  auctionSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create delinquency job", err)
		os.Exit(1)
	}
	lifecycleJob, err := sweep.NewLifecycleJob(sweep.LifecycleJobParams{
		Logger:   logg,
		Auctions: auctionSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle job", err)
		os.Exit(1)
	}

	lock, err := sweep.NewRedisLock(redisClient, redisClient.LockKey(serviceName+":"+cfg.App.Env), cfg.Sweep.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	service, err := sweep.NewService(sweep.ServiceParams{
		Logger:   logg,
		Registry: sweep.NewRegistry(delinquencyJob, lifecycleJob),
		Lock:     lock,
		Metrics:  metrics.NewSweepJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Sweep.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting auction worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "auction worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "auction worker shutting down gracefully")
}
