// Command visionmcp runs the TaskVision MCP server.
//
// It communicates over stdio (default) or HTTP using JSON-RPC 2.0 (MCP
// protocol) and holds all task, context, progress, vision, and agent state
// in memory for the lifetime of the process.
//
// Optional environment variables:
//
//	VISIONMCP_CONFIG      - path to a TOML config file
//	VISIONMCP_LOG_LEVEL    - debug, info, warn, error (default: info)
//	VISIONMCP_TRANSPORT    - stdio or http (default: stdio)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emergent-company/taskvision-mcp/internal/config"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/metrics"
	"github.com/emergent-company/taskvision-mcp/internal/store"
	"github.com/emergent-company/taskvision-mcp/internal/store/memory"
	"github.com/emergent-company/taskvision-mcp/internal/tools/agent"
	"github.com/emergent-company/taskvision-mcp/internal/tools/hintstool"
	"github.com/emergent-company/taskvision-mcp/internal/tools/progress"
	"github.com/emergent-company/taskvision-mcp/internal/tools/subtask"
	"github.com/emergent-company/taskvision-mcp/internal/tools/task"
	"github.com/emergent-company/taskvision-mcp/internal/tools/vision"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "visionmcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	logger.Info("starting visionmcp", "version", version, "transport", cfg.Transport.Mode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	repos := &store.Repositories{
		Tasks:    memory.NewTaskRepository(),
		Contexts: memory.NewContextRepository(),
		Progress: memory.NewProgressRepository(),
		Vision:   memory.NewVisionRepository(),
		Agents:   memory.NewAgentRepository(),
		Hints:    memory.NewHintRepository(),
	}

	orch := usecase.New(repos, cfg.Engine.ToUsecaseConfig(), collector)

	closeWatch, err := config.Watch(*configPath, func(reloaded *config.Config) {
		orch.Config = reloaded.Engine.ToUsecaseConfig()
		logger.Info("config reloaded", "max_hints", orch.Config.MaxHints)
	})
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	defer closeWatch()

	registry := mcp.NewRegistry()
	registerTools(registry, orch)

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	switch cfg.Transport.Mode {
	case "http":
		return runHTTP(ctx, cfg, server, reg, logger)
	default:
		return server.Run(ctx)
	}
}

func registerTools(registry *mcp.Registry, orch *usecase.Orchestrator) {
	registry.Register(task.NewManageTask(orch))
	registry.Register(task.NewCompleteTaskWithUpdate(orch))

	registry.Register(subtask.NewManageSubtask(orch))
	registry.Register(subtask.NewCompleteSubtaskWithUpdate(orch))

	registry.Register(progress.NewReportProgress(orch))
	registry.Register(progress.NewQuickTaskUpdate(orch))
	registry.Register(progress.NewCheckpointWork(orch))

	registry.Register(hintstool.NewGetWorkflowHints(orch))
	registry.Register(hintstool.NewProvideHintFeedback(orch))

	registry.Register(agent.NewAssignAgentToTask(orch))
	registry.Register(agent.NewRequestWorkHandoff(orch))
	registry.Register(agent.NewAcceptHandoff(orch))
	registry.Register(agent.NewRejectHandoff(orch))
	registry.Register(agent.NewCompleteHandoff(orch))
	registry.Register(agent.NewGetAgentWorkload(orch))
	registry.Register(agent.NewResolveConflict(orch))
	registry.Register(agent.NewBroadcastStatus(orch))

	registry.Register(vision.NewGetVisionAlignment(orch))
	registry.Register(vision.NewGetVisionInsights(orch))
}

func runHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, reg *prometheus.Registry, logger *slog.Logger) error {
	httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, os.Getenv("VISIONMCP_BEARER_TOKEN"), logger)

	mux := http.NewServeMux()
	mux.Handle("/", httpServer.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := cfg.Transport.Host + ":" + cfg.Transport.Port
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
