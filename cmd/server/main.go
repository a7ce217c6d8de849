package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/opendaw/opendaw-mcp/internal/config"
	"github.com/opendaw/opendaw-mcp/internal/domain/project"
	"github.com/opendaw/opendaw-mcp/internal/mcp"
	"github.com/opendaw/opendaw-mcp/internal/mistral"
	"github.com/opendaw/opendaw-mcp/internal/render"
	"github.com/opendaw/opendaw-mcp/internal/store"
	"github.com/opendaw/opendaw-mcp/internal/store/memory"
	s3store "github.com/opendaw/opendaw-mcp/internal/store/s3"
	sqlitestore "github.com/opendaw/opendaw-mcp/internal/store/sqlite"
	"github.com/opendaw/opendaw-mcp/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Server.Transport == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	objectStore, closeStore, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open object store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	if closeStore != nil {
		defer closeStore()
	}

	repo := project.NewRepository(objectStore, logger)

	var generator mcp.TrackGenerator
	if cfg.Mistral.APIKey != "" {
		client, err := mistral.New(mistral.Config{
			APIKey:  cfg.Mistral.APIKey,
			Model:   cfg.Mistral.Model,
			Timeout: cfg.Mistral.Timeout,
		}, logger)
		if err != nil {
			logger.Error("failed to create Mistral client", "error", err)
			os.Exit(1)
		}
		generator = client
	} else {
		logger.Info("MISTRAL_API_KEY not set, AI track generation disabled")
	}

	registry := mcp.NewRegistry()
	mcp.RegisterAll(registry, repo, generator, render.NewEngine(), logger)

	if cfg.Server.Transport == "stdio" {
		runStdioMode(logger, registry)
		return
	}
	runHTTPMode(logger, registry, cfg.Server.Host, cfg.Server.Port)
}

// openStore builds the configured object store backend. The returned close
// func is nil for backends with nothing to release.
func openStore(cfg config.StoreConfig, logger *slog.Logger) (store.ObjectStore, func() error, error) {
	switch cfg.Backend {
	case "s3":
		st, err := s3store.New(context.Background(), s3store.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Endpoint:  cfg.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using S3 object store", "bucket", cfg.Bucket, "region", cfg.Region)
		return st, nil, nil
	case "sqlite":
		if err := ensureStoreDir(cfg.Path); err != nil {
			return nil, nil, err
		}
		st, err := sqlitestore.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite object store", "path", cfg.Path)
		return st, st.Close, nil
	case "memory":
		logger.Warn("using in-memory object store, data will not persist")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func runStdioMode(logger *slog.Logger, registry *mcp.Registry) {
	server, err := mcp.NewSDKServer(registry, logger)
	if err != nil {
		logger.Error("failed to build MCP server", "error", err)
		os.Exit(1)
	}

	logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, registry *mcp.Registry, host string, port int) {
	dispatcher := mcp.NewDispatcher(registry, logger)
	router := transport.NewServer(dispatcher, dispatcher)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureStoreDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
