// Command reviewserver wires configuration, clients, agents, and the task
// orchestrator together and serves the HTTP transport until signalled to
// shut down.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	concpool "github.com/sourcegraph/conc/pool"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/config"
	"github.com/buildsense-ai/review-app-sub000/internal/evidence"
	"github.com/buildsense-ai/review-app-sub000/internal/future"
	"github.com/buildsense-ai/review-app-sub000/internal/httpapi"
	"github.com/buildsense-ai/review-app-sub000/internal/llm"
	"github.com/buildsense-ai/review-app-sub000/internal/orchestrator"
	"github.com/buildsense-ai/review-app-sub000/internal/search"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load(os.Getenv("REVIEW_CONFIG_FILE"))

	llmClient := llm.NewRetrier(
		llm.NewHTTPTransport(cfg.LLMBaseURL, cfg.LLMAPIKey),
		cfg.LLMRetries,
		500*time.Millisecond,
		logger.With("component", "llm"),
	)
	searchClient := search.NewHTTPClient(cfg.SearchAPIURL, cfg.SearchAPIKey, cfg.SearchEngineID)

	pool := buildPool(cfg)

	baseOpts := &agent.Options{
		Client:      llmClient,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		MaxInFlight: cfg.NMod,
		Logger:      logger.With("component", "agent"),
	}

	redundancy := &agent.Redundancy{Opts: baseOpts}
	table := &agent.Table{Opts: baseOpts}
	thesisOpts := *baseOpts
	thesisOpts.Temperature = cfg.ConsistencyCheckTemperature
	thesis := &agent.Thesis{Opts: &thesisOpts, ExtractionTemperature: cfg.ThesisExtractionTemperature}

	evidenceOpts := *baseOpts
	evidenceOpts.Temperature = cfg.ContentCorrectionTemperature
	evidenceAnalyzer := &evidence.Analyzer{Opts: &evidenceOpts}
	evidenceModifier := &evidence.Modifier{Opts: &evidenceOpts}
	stageOpts := &evidence.StageOptions{
		Client:          searchClient,
		MaxInFlight:     cfg.NSearch,
		ClaimCap:        cfg.NClaimCap,
		Timeout:         cfg.SearchTimeout,
		Logger:          logger.With("component", "evidence"),
	}

	pipelines := map[string]orchestrator.Pipeline{
		string(agent.KindRedundancy): orchestrator.NewSimplePipeline(redundancy),
		string(agent.KindTable):      orchestrator.NewSimplePipeline(table),
		string(agent.KindThesis):     orchestrator.NewSimplePipeline(thesis),
		string(agent.KindEvidence):   orchestrator.NewEvidencePipeline(evidenceAnalyzer, stageOpts, evidenceModifier),
	}

	orch := orchestrator.New(
		pipelines,
		cfg.OutputDir,
		orchestrator.WithPool(pool),
		orchestrator.WithTaskTimeout(cfg.TaskTimeout),
		orchestrator.WithLogger(logger.With("component", "orchestrator")),
	)

	agents := []httpapi.AgentInfo{
		{Name: string(agent.KindRedundancy), Description: "flags redundant or duplicated passages across sections"},
		{Name: string(agent.KindTable), Description: "identifies enumerated content better presented as a table"},
		{Name: string(agent.KindThesis), Description: "checks section content against the document's stated thesis"},
		{Name: string(agent.KindEvidence), Description: "finds supporting sources for unsupported factual claims"},
	}
	health := map[string]httpapi.HealthFunc{
		string(agent.KindRedundancy): func() bool { return cfg.LLMAPIKey != "" },
		string(agent.KindTable):      func() bool { return cfg.LLMAPIKey != "" },
		string(agent.KindThesis):     func() bool { return cfg.LLMAPIKey != "" },
		string(agent.KindEvidence):   func() bool { return cfg.LLMAPIKey != "" && cfg.SearchAPIKey != "" },
	}

	server := httpapi.New(orch, agents, health, logger.With("component", "http"))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Routes(),
	}

	go runCleanupLoop(orch, cfg, logger)

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(httpServer, logger)
}

func buildPool(cfg *config.Config) future.Pool {
	switch cfg.PoolKind {
	case "ants":
		p, err := ants.NewPool(cfg.MaxWorkers)
		if err != nil {
			slog.Default().Error("failed to construct ants pool, falling back to goroutines", "error", err)
			return future.PoolOfGoroutines()
		}
		return future.PoolOfAnts(p)
	case "workerpool":
		return future.PoolOfWorkerpool(workerpool.New(cfg.MaxWorkers))
	case "conc":
		return future.PoolOfConc(concpool.New().WithMaxGoroutines(cfg.MaxWorkers))
	default:
		return future.PoolOfGoroutines()
	}
}

func runCleanupLoop(orch *orchestrator.Orchestrator, cfg *config.Config, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		removed := orch.Cleanup(time.Duration(cfg.CleanupAfterHours) * time.Hour)
		if removed > 0 {
			logger.Info("cleanup swept terminal tasks", "removed", removed)
		}
	}
}

func waitForShutdown(httpServer *http.Server, logger *slog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
