package main

import (
	"context"
	"errors"
	"fmt"
	"inbox-lab/auth"
	"inbox-lab/contract"
	"inbox-lab/infrastructure/grpc/server"
	"inbox-lab/internal"
	"inbox-lab/moderation"
	"inbox-lab/repositories"
	"inbox-lab/runtime"
	"inbox-lab/runtime/workers"
	"inbox-lab/services"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inbox server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (database, index cache) run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	tokens, err := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	if err != nil {
		return exitConfig, fmt.Errorf("auth config error: %w", err)
	}

	filter, err := buildFilter(config, logger)
	if err != nil {
		return exitConfig, err
	}

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := repositories.NewConversationIndex(db, logger, config.ParticipantCache)
	if err != nil {
		return exitRuntime, fmt.Errorf("conversation index failed: %w", err)
	}
	defer func() { _ = index.Close() }()
	store := repositories.NewMessageStore(db, logger)

	// 3. Setup Supervision & Delivery
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(logger, sup, registry, index, runtime.Config{
		EventBufferSize:        config.EventBufferSize,
		SubscriptionBufferSize: config.SubscriptionBufferSize,
		SinkTimeout:            config.SinkTimeout,
		MonitorInterval:        config.MonitorInterval,
		PressureThreshold:      config.PressureThreshold,
	})

	inboxService := services.NewInboxService(logger, store, index, orchestrator, filter, services.InboxConfig{
		DefaultPageSize:    config.DefaultPageSize,
		MaxPageSize:        config.MaxPageSize,
		RetryDelay:         config.RetryDelay,
		SummaryConcurrency: config.SummaryConcurrency,
	})

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})

	// 5. Start the delivery workers
	go func() {
		defer close(orchestratorDone)
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 6. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		stop()
		<-orchestratorDone
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	s := server.NewGRPCServer(logger, auth.NewInterceptor(logger, tokens), server.NewInboxServer(logger, inboxService))

	go func() {
		logger.Info("Starting gRPC server", "address", config.Address(), "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup
	logger.Info("Shutting down gracefully...")
	shutdown(s, config.ShutdownTimeout, logger)
	stop()
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}

// shutdown lets unary calls finish. Connect streams only end with their client,
// so the server is stopped hard once timeout elapses.
func shutdown(s *grpc.Server, timeout time.Duration, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Graceful stop timed out, closing remaining streams", "timeout", timeout)
		s.Stop()
		<-done
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// buildFilter returns nil when no dictionary directory is configured.
func buildFilter(config internal.Config, logger *slog.Logger) (contract.ITextFilter, error) {
	if config.CensoredDir == "" {
		return nil, nil
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(config.CensoredDir)
	if err != nil {
		return nil, err
	}
	data, err := moderation.NewCensoredLoader(os.DirFS(dir)).LoadAll(".")
	if err != nil {
		return nil, fmt.Errorf("loading censored words from %s: %w", dir, err)
	}
	logger.Info("Moderation enabled", "languages", data.Languages, "words", len(data.Words))
	moderator, err := moderation.NewModerator(data.Words, charReplacement, logger)
	if err != nil {
		return nil, err
	}
	return moderator, nil
}
