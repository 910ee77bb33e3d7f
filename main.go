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

	"golang.org/x/sync/errgroup"

	"tab-sweeper/domain/repository"
	"tab-sweeper/infrastructure/browser"
	"tab-sweeper/infrastructure/cache"
	youtubeclient "tab-sweeper/infrastructure/clients/youtube"
	"tab-sweeper/infrastructure/configuration"
	"tab-sweeper/infrastructure/logger"
	"tab-sweeper/infrastructure/notification"
	"tab-sweeper/infrastructure/persistence"
	httpHandler "tab-sweeper/interfaces/http"
	"tab-sweeper/pkg/locker"
	"tab-sweeper/server"
	"tab-sweeper/usecase"
)

var httpServer *http.Server

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

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.Reload()

	cfg := configuration.C

	// Redis is optional: with it the snapshot, the writer lock and the
	// notification channel are shared; without it everything stays local.
	var store repository.IVideoCache
	var notifier repository.INotifier
	var lk locker.DistributedLocker
	if addr := cfg.RedisClient.Addr(); addr != "" {
		redisClient, err := cache.NewCache(ctx, addr, cfg.RedisClient.Username, cfg.RedisClient.Password)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - falling back to file snapshot store")
		} else {
			store = cache.NewVideoSnapshotCache(redisClient)
			notifier = notification.NewRedisNotifier(redisClient, cfg.Sweeper.NotifyChannel)
			lk = locker.NewRedisLocker(redisClient)
			logger.GetLogger().Info("Redis client initialized successfully")
		}
	}
	if store == nil {
		store = persistence.NewFileSnapshotStore(cfg.Sweeper.CacheFile)
		notifier = notification.NewLogNotifier()
		lk = locker.NewLocalLocker()
		logger.GetLogger().WithField("path", cfg.Sweeper.CacheFile).Info("Using file snapshot store")
	}

	credentialSet := cfg.YouTube.CredentialPresent()
	var youtubeClient repository.IYouTube
	if credentialSet {
		var err error
		youtubeClient, err = youtubeclient.NewClient(ctx, &youtubeclient.Config{
			APIKey:       cfg.YouTube.APIKey,
			ClientID:     cfg.YouTube.ClientID,
			ClientSecret: cfg.YouTube.ClientSecret,
			AccessToken:  cfg.YouTube.AccessToken,
			RefreshToken: cfg.YouTube.RefreshToken,
		})
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube client - channel sweeps will be disabled")
			credentialSet = false
		}
	} else {
		logger.GetLogger().Info("YouTube API credentials not configured - channel sweeps will report a configuration error")
	}

	tabs := browser.NewTabs(cfg.Browser.DevToolsURL)

	resolver := usecase.NewResolverUseCase(store, youtubeClient, notifier, lk, credentialSet, cfg.Sweeper.ChunkTimeout())
	sweeper := usecase.NewSweeperUseCase(tabs, resolver, store, notifier)
	sweepHandler := httpHandler.NewSweepHandler(sweeper)

	router := server.InitiateRouter(sweepHandler)

	port := cfg.App.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
