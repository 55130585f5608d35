package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/studyloop/studyloop/internal/cache"
	"github.com/studyloop/studyloop/internal/handler"
	"github.com/studyloop/studyloop/internal/jobs"
	"github.com/studyloop/studyloop/internal/repository"
	"github.com/studyloop/studyloop/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	statsCacheTTL   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05Z"))
	}

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.S().Info("logger initialized")

	if err := godotenv.Load(); err != nil {
		zap.S().Debug("load .env file", zap.Error(err))
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresPort := os.Getenv("POSTGRES_PORT")
	postgresUser := os.Getenv("POSTGRES_USER")
	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	postgresDB := os.Getenv("POSTGRES_DB")

	if postgresHost == "" {
		zap.S().Fatal("missing required environment variables")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		postgresHost, postgresPort, postgresUser, postgresPassword, postgresDB)

	repo, err := repository.NewDB(dsn, 10, 20)
	if err != nil {
		zap.S().Error("connect to PostgreSQL", zap.Error(err), zap.String("host", postgresHost))
		os.Exit(1)
	}
	defer repo.Close()

	if err = repo.Up("migrations"); err != nil {
		zap.S().Error("run migrations", zap.Error(err))
		os.Exit(1)
	}

	svc := service.NewService(repo)

	scheduler := jobs.New(svc)
	if err := scheduler.Start(); err != nil {
		zap.S().Error("start job scheduler", zap.Error(err))
		os.Exit(1)
	}
	defer scheduler.Stop()

	loader := cache.NewLoader(cache.New(statsCacheTTL))
	router := handler.New(svc, loader).Router()

	srv := &http.Server{
		Addr:         httpAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infow("http server listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Error("shutdown http server", zap.Error(err))
	}
}
