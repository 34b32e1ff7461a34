package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/financing-engine/internal/config"
	"github.com/dealerdesk/financing-engine/internal/handler"
	"github.com/dealerdesk/financing-engine/internal/repository"
	"github.com/dealerdesk/financing-engine/internal/service"
	"github.com/dealerdesk/financing-engine/pkg/logger"
	"github.com/dealerdesk/financing-engine/pkg/response"
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

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories and the per-unit transactional boundary
	unitRepo := repository.NewUnitRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	uow := repository.NewUnitOfWork(db)

	financingService := service.NewFinancingService(uow, unitRepo, periodRepo, paymentRepo, redisClient, cfg, appLogger)
	financingHandler := handler.NewFinancingHandler(financingService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(financingHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(financingHandler *handler.FinancingHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/units", financingHandler.RegisterUnit).Methods("POST")
	api.HandleFunc("/units/{unitId}/interest/initialize", financingHandler.InitializeInterestPeriod).Methods("POST")
	api.HandleFunc("/units/{unitId}/interest/rate", financingHandler.UpdateInterestRate).Methods("PUT")
	api.HandleFunc("/units/{unitId}/interest/stop", financingHandler.StopInterestCalculation).Methods("POST")
	api.HandleFunc("/units/{unitId}/interest/resume", financingHandler.ResumeInterestCalculation).Methods("POST")
	api.HandleFunc("/units/{unitId}/interest", financingHandler.GetStockInterestDetail).Methods("GET")
	api.HandleFunc("/units/{unitId}/debt/initialize", financingHandler.InitializeDebt).Methods("POST")
	api.HandleFunc("/units/{unitId}/debt/payments", financingHandler.RecordDebtPayment).Methods("POST")
	api.HandleFunc("/units/{unitId}/debt/payments", financingHandler.ListDebtPayments).Methods("GET")
	api.HandleFunc("/units/{unitId}/debt/summary", financingHandler.GetDebtSummary).Methods("GET")
	api.HandleFunc("/stats/interest", financingHandler.GetInterestStats).Methods("GET")
	api.HandleFunc("/stats/debt", financingHandler.GetDebtStats).Methods("GET")

	return router
}
