package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/bloomhealth/internal"
	api "github.com/yourname/bloomhealth/internal/api"
	"github.com/yourname/bloomhealth/internal/auth"
	"github.com/yourname/bloomhealth/internal/config"
	"github.com/yourname/bloomhealth/internal/health"
	"github.com/yourname/bloomhealth/internal/metrics"
	"github.com/yourname/bloomhealth/internal/provider"
	"github.com/yourname/bloomhealth/internal/service"
	"github.com/yourname/bloomhealth/internal/storage"
)

type app struct {
	logger internal.Logger
	hub    *service.Hub
	sink   service.SampleSink
}

func (a *app) Logger() internal.Logger        { return a.logger }
func (a *app) Hub() *service.Hub              { return a.hub }
func (a *app) SampleSink() service.SampleSink { return a.sink }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	policies, err := health.ParsePolicies(cfg.PlaceholderMetrics, health.DefaultPolicies())
	if err != nil {
		logger.Fatalf("invalid PLACEHOLDER_METRICS: %v", err)
	}
	logger.Infof("metric policies: %s", policies)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewDocumentStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init %s store: %v", cfg.StoreBackend, err)
	}
	defer store.Close()

	a := &app{logger: logger}
	var source provider.Source
	switch cfg.Provider {
	case "http":
		source = provider.NewHTTP(cfg.ProviderURL, logger)
	default:
		mem := provider.NewMemory(logger)
		source = mem
		a.sink = mem
	}

	collector := metrics.NewCollector()
	a.hub = service.NewHub(source, store, logger, service.HubOptions{
		Policies:   policies,
		Collection: cfg.StoreCollection,
		Recorder:   collector,
		Observer:   collector,
	})
	defer a.hub.Close()

	refresher := service.NewRefresher(a.hub, cfg.RefreshInterval, logger)
	if err := refresher.Start(); err != nil {
		logger.Fatalf("failed to schedule refresh: %v", err)
	}
	defer refresher.Stop()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(a, cfg, auth.NewProvider(cfg, logger), collector)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams end with their session.
	srv.RegisterOnShutdown(a.hub.Close)

	go func() {
		logger.Infof("server running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}
