package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/campusrecruit/internal/bootstrap"
	"anoa.com/campusrecruit/internal/config"
	searchService "anoa.com/campusrecruit/internal/modules/search/service"
	"anoa.com/campusrecruit/internal/server"
	"anoa.com/campusrecruit/pkg/database"
	"anoa.com/campusrecruit/pkg/logger"
	"anoa.com/campusrecruit/pkg/mailer"
	"anoa.com/campusrecruit/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if cfg.IsDevelopment() || cfg.AdminPassword != "" {
		if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword, cfg.IsDevelopment()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
	}

	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	fileStorage, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	if err != nil {
		log.Warn().Err(err).Msg("cloudinary storage disabled")
	}

	srv := server.NewServer(cfg, server.Deps{
		DB:          db,
		RedisClient: redisClient,
		Search:      newSearch(cfg.MeiliSearchHost, cfg.MeiliMasterKey),
		Storage:     fileStorage,
		Mailer: mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
			From:     cfg.EmailFrom,
			Timeout:  cfg.MailTimeout,
		}),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("env", cfg.AppEnv).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited with error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; rate
// limiting and realtime notifications are then disabled.
func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Warn().Msg("REDIS_URL not set, realtime notifications and rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Error().Err(err).Msg("redis url parse failed")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("redis ping failed")
		_ = client.Close()
		return nil
	}
	return client
}

func newSearch(host, key string) searchService.JobSearchService {
	if host == "" {
		return searchService.NewNoopSearchService()
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return searchService.NewMeiliSearchService(meilisearch.New(host, meilisearch.WithAPIKey(key)))
}
