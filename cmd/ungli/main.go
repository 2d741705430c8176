package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/config"
	"github.com/unglihq/ungli/internal/httpapi"
	"github.com/unglihq/ungli/internal/interview"
	"github.com/unglihq/ungli/internal/observability"
	"github.com/unglihq/ungli/internal/policy"
	"github.com/unglihq/ungli/internal/research"
	"github.com/unglihq/ungli/internal/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := transcript.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("transcript store init failed: %v", err)
	}
	defer store.Close()

	client, err := completion.New(completion.Config{
		Mode:        cfg.CompletionMode,
		URL:         cfg.CompletionURL,
		APIKey:      cfg.CompletionAPIKey,
		Model:       cfg.CompletionModel,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		Timeout:     cfg.CompletionTimeout,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	rec := transcript.NewRecorder(store)
	filters := policy.NewFilters(cfg.ForbiddenPhrases, cfg.DuplicateThreshold)
	engine := interview.NewEngine(client, filters, metrics)

	researchStore, err := research.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("research store init failed: %v", err)
	}
	defer researchStore.Close()

	places := research.NewPlacesClient(cfg.PlacesAPIKey, cfg.ResearchTimeout,
		research.WithPlacesMaxPages(cfg.PlacesSearchPages))
	hn := research.NewHNClient(cfg.HNSearchURL, cfg.ResearchTimeout)
	scraper := research.NewScraper(cfg.ResearchTimeout)
	tools := research.NewToolset(places, hn, scraper, client)
	pipeline := research.NewPipeline(
		research.NewExtractor(client), tools, places, researchStore, client, cfg.EnrichCompanyLimit)
	runner := research.NewRunner(pipeline, metrics, 0)

	api := httpapi.New(cfg, store, rec, engine, runner, researchStore, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}
	runner.Wait()

	log.Printf("shutdown complete")
}
