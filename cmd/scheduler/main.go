package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/financing-engine/internal/config"
	"github.com/dealerdesk/financing-engine/internal/repository"
	"github.com/dealerdesk/financing-engine/internal/service"
	"github.com/dealerdesk/financing-engine/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	logger.SetGlobalLogger(appLogger)

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	financingService := service.NewFinancingService(
		repository.NewUnitOfWork(db),
		repository.NewUnitRepository(db),
		repository.NewPeriodRepository(db),
		repository.NewPaymentRepository(db),
		redisClient,
		cfg,
		appLogger,
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("invalid scheduler timezone")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Nightly refresh of the dashboard stats caches
	_, err = c.AddFunc(cfg.Scheduler.StatsRefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		appLogger.Info().Msg("refreshing stats caches")
		if err := financingService.RefreshStatsCaches(ctx); err != nil {
			appLogger.Error().Err(err).Msg("stats cache refresh failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule stats refresh job")
	}

	c.Start()
	appLogger.Info().Str("spec", cfg.Scheduler.StatsRefreshSpec).Msg("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	appLogger.Info().Msg("scheduler stopped")
}
