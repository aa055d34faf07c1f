package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/sink"
	"chat-relay/transport/ws"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Keeping everything behind a single error return guarantees the defers
// (badger close, supervisor stop) execute on every exit path.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Core state
	identities := runtime.NewIdentityStore(rand.New(rand.NewSource(time.Now().UnixNano())))
	registry := runtime.NewRegistry(nil)
	stats := observability.NewStatsRecorder()

	moderator, err := moderation.NewModerator(censoredWords(config.CensoredWords), charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Transport & Coordinator
	// The hub and the coordinator reference each other, so the handler is
	// injected after both exist.
	hub := ws.NewHub(logger, stats)
	coordinator := runtime.NewCoordinator(logger, identities, registry, hub, moderator, config.EventBufferSize)
	hub.SetHandler(coordinator)

	// 4. Event sinks
	sinks := []contract.EventSink{stats}

	if config.BadgerFilepath != nil {
		options := buildBadgerOpts(*config.BadgerFilepath, logger, ctx)
		db, err := badger.Open(options)
		if err != nil {
			return exitRuntime, fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			// Defer ensures the database lock is released and buffers are flushed before the function returns.
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}()

		messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
		sinks = append(sinks, sink.NewDiskSink(messageRepository, logger))
		logger.Info("Message archiving enabled", "path", *config.BadgerFilepath)
	}

	// 5. Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewEventFanout(logger, coordinator.Events(), config.SinkTimeout, sinks...),
		workers.NewHeartbeatWorker(logger, stats, config.HeartbeatInterval),
	)
	go sup.Run(ctx)

	// 6. HTTP server (websocket endpoint + side lookups)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	internal.NewSideAPI(logger, identities, registry, stats).Register(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting relay server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown failed", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func censoredWords(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(word string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(word)
		return trimmed, trimmed != ""
	})
}

func buildBadgerOpts(path string, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(path)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
