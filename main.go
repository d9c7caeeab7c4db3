package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/athapong/adf-mcp/pkg/metrics"
	"github.com/athapong/adf-mcp/prompts"
	"github.com/athapong/adf-mcp/tools"
	"github.com/athapong/adf-mcp/util"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (disabled when empty)")
	flag.Parse()

	logger := util.Logger()

	if err := godotenv.Load(*envFile); err != nil {
		logger.Warnf("Error loading env file %s: %v", *envFile, err)
	}

	if *metricsAddr == "" {
		*metricsAddr = os.Getenv("METRICS_ADDR")
	}

	mcpServer := server.NewMCPServer(
		"adf-mcp",
		"1.0.0",
		server.WithLogging(),
		server.WithPromptCapabilities(true),
	)

	tools.RegisterToolManagerTool(mcpServer)

	enabled, allToolsEnabled := tools.EnabledToolsets()
	isEnabled := func(toolName string) bool {
		return allToolsEnabled || enabled.Contains(toolName)
	}

	if isEnabled("adf") {
		tools.RegisterADFTools(mcpServer)
	}

	if isEnabled("jira") {
		tools.RegisterJiraTool(mcpServer)
		prompts.RegisterIssuePrompts(mcpServer)
	}

	if isEnabled("confluence") {
		tools.RegisterConfluenceTool(mcpServer)
	}

	if *metricsAddr != "" {
		srv, stopTicker := startMetricsServer(*metricsAddr)
		defer func() {
			stopTicker()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Errorf("Error during metrics server shutdown: %v", err)
			}
		}()
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

// startMetricsServer serves /metrics on addr and refreshes the system gauges
// until the returned stop function is called.
func startMetricsServer(addr string) (*http.Server, func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	done := make(chan struct{})
	go refreshSystemMetrics(15*time.Second, done)

	go func() {
		util.Logger().Infof("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger().Errorf("Metrics server failed: %v", err)
		}
	}()
	var once sync.Once
	return srv, func() { once.Do(func() { close(done) }) }
}

func refreshSystemMetrics(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		case <-done:
			return
		}
	}
}
