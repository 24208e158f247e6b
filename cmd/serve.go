package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/config"
	"github.com/teemow/meetpilot/internal/google"
	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
	"github.com/teemow/meetpilot/internal/resources"
	"github.com/teemow/meetpilot/internal/server"
	"github.com/teemow/meetpilot/internal/tools/meeting_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var metricsConfig MetricsConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio, exposing the meeting_suggest_slots and
meeting_schedule tools and the organizer and settings resources to AI
assistants.

Prometheus metrics and health probes are served on a separate port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				metricsConfig.Addr = ""
			}
			return runServe(cmd.Context(), metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&metricsConfig.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port.")
	cmd.Flags().StringVar(&metricsConfig.Addr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(ctx context.Context, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if metricsConfig.Addr == "" {
		metricsConfig.Addr = cfg.MetricsAddr
	}

	provider, err := newProvider(shutdownCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(shutdownCtx)); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	scheduler, err := newScheduler(shutdownCtx, cfg, logger, provider.Metrics())
	if err != nil {
		return err
	}

	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(metricsConfig.Addr, provider, cfg, logger)
		if err != nil {
			return err
		}
		if metricsServer != nil {
			defer func() {
				stopCtx, stop := context.WithTimeout(context.WithoutCancel(shutdownCtx), server.DefaultShutdownTimeout)
				defer stop()
				if err := metricsServer.Shutdown(stopCtx); err != nil {
					logger.Warn("metrics server shutdown failed", logging.Err(err))
				}
			}()
		}
	}

	mcpSrv := mcpserver.NewMCPServer("meetpilot", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	meeting_tools.RegisterTools(mcpSrv, scheduler, provider.Metrics(), logger)
	resources.RegisterResources(mcpSrv, scheduler, resources.Settings{
		CalendarBackend: cfg.CalendarBackend,
		OracleModel:     cfg.Oracle.Model,
		Lookback:        cfg.Lookback,
		CallTimeout:     cfg.CallTimeout,
	})

	return runStdioServer(shutdownCtx, mcpSrv)
}

// startMetricsServer serves /metrics and the health probes in the background.
// Readiness tracks whether a Google token is cached for the configured account.
func startMetricsServer(addr string, provider *instrumentation.Provider, cfg *config.Config, logger *slog.Logger) (*server.MetricsServer, error) {
	handler := provider.PrometheusHandler()
	if handler == nil {
		logger.Info("prometheus exporter not configured, metrics server disabled")
		return nil, nil
	}

	tokens := google.NewFileTokenProvider()
	health := server.NewHealthChecker()
	health.AddCheck("google_token", func(context.Context) error {
		if !tokens.HasTokenForAccount(cfg.Google.Account) {
			return fmt.Errorf("no token for account %q", cfg.Google.Account)
		}
		return nil
	})

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:           addr,
		MetricsHandler: handler,
		Health:         health,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}
	go func() {
		if err := metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	health.SetReady(true)

	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
