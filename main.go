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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"social-publisher/domain/repository"
	"social-publisher/infrastructure/cache"
	facebookclient "social-publisher/infrastructure/clients/facebook"
	instagramclient "social-publisher/infrastructure/clients/instagram"
	linkedinclient "social-publisher/infrastructure/clients/linkedin"
	"social-publisher/infrastructure/clients/media"
	tiktokclient "social-publisher/infrastructure/clients/tiktok"
	twitterclient "social-publisher/infrastructure/clients/twitter"
	youtubeclient "social-publisher/infrastructure/clients/youtube"
	"social-publisher/infrastructure/configuration"
	"social-publisher/infrastructure/logger"
	"social-publisher/infrastructure/metrics"
	"social-publisher/infrastructure/oauth"
	"social-publisher/infrastructure/persistence"
	httpHandler "social-publisher/interfaces/http"
	"social-publisher/server"
	"social-publisher/usecase"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	configuration.LoadEnvFromFile("config.env", ".env")

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("PostgreSQL initialization failed")
	}
	if err := persistence.EnsureSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Schema initialization failed")
	}
	logger.GetLogger().Info("Database connected.")

	redisClient, err := cache.NewCache(ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - suggestions will be computed on every request")
		redisClient = nil
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	userRepository := persistence.NewUserRepository(db)
	credentialRepository := persistence.NewCredentialRepository(db)
	postRepository := persistence.NewScheduledPostRepository(db)

	httpClient := &http.Client{Timeout: 60 * time.Second}
	fetcher := media.NewFetcher(httpClient)
	refresher := oauth.NewRefresher(httpClient, configuration.C.OAuth)

	publishers := []repository.IPlatformPublisher{
		youtubeclient.NewClient(httpClient, fetcher),
		instagramclient.NewClient(httpClient),
		tiktokclient.NewClient(httpClient, fetcher),
		facebookclient.NewClient(httpClient, fetcher),
		twitterclient.NewClient(httpClient, fetcher),
		linkedinclient.NewClient(httpClient, fetcher),
	}

	suggestionCache := cache.NewSuggestionCache(redisClient,
		time.Duration(configuration.C.Scheduling.CacheTTLMinutes)*time.Minute)

	userUsecase := usecase.NewUserUsecase(userRepository)
	credentialUsecase := usecase.NewCredentialUsecase(credentialRepository, refresher, collector)
	publishUsecase := usecase.NewPublishUsecase(credentialRepository, postRepository, credentialUsecase, publishers, collector)
	dispatchUsecase := usecase.NewDispatchUsecase(
		postRepository,
		publishUsecase,
		time.Duration(configuration.C.Dispatch.StalenessMinutes)*time.Minute,
		configuration.C.Dispatch.BatchSize,
		configuration.C.Dispatch.Parallelism,
		collector,
	)
	postUsecase := usecase.NewPostUsecase(postRepository)
	schedulingUsecase := usecase.NewSchedulingUsecase(postRepository, suggestionCache,
		configuration.C.Scheduling.HistoryDays, configuration.C.Scheduling.MinSamples)

	router := server.InitiateRouter(
		httpHandler.NewUserHandler(userUsecase),
		httpHandler.NewPostHandler(postUsecase),
		httpHandler.NewCredentialHandler(credentialUsecase),
		httpHandler.NewSuggestionHandler(schedulingUsecase),
		httpHandler.NewDispatchHandler(dispatchUsecase),
		metrics.Handler(registry),
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", configuration.C.App.Port),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.GetLogger().WithField("port", configuration.C.App.Port).Info("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(configuration.C.Dispatch.IntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		logger.GetLogger().WithField("interval", interval.String()).Info("Dispatch loop starting")
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				stats, err := dispatchUsecase.ProcessDuePosts(ctx)
				if err != nil {
					logger.GetLogger().WithField("error", err).Error("Dispatch pass failed")
					continue
				}
				if stats.Processed > 0 {
					logger.GetLogger().WithFields(map[string]interface{}{
						"processed": stats.Processed,
						"published": stats.Published,
						"retried":   stats.Retried,
						"cancelled": stats.Cancelled,
					}).Info("Dispatch pass completed")
				}
			}
		}
	})

	g.Go(func() error {
		select {
		case sig := <-interrupt:
			logger.GetLogger().WithField("signal", sig.String()).Info("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Application terminated with error")
	}
	logger.GetLogger().Info("Application stopped")
}
