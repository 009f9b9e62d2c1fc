package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"private-chat/auth"
	"private-chat/infrastructure/websocket/server"
	"private-chat/internal"
	"private-chat/moderation"
	"private-chat/observability"
	"private-chat/repositories"
	"private-chat/runtime"
	"private-chat/runtime/workers"
	"private-chat/services"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and returns instead of exiting so that the
// deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	seedUsers, err := internal.ParseSeedUsers(config.SeedUsers)
	if err != nil {
		return err
	}
	censorChar, err := internal.CharacterRune(config.CensorCharacter)
	if err != nil {
		return err
	}

	// 2. Accounts (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(repositories.NewUserRepository(db), issuer, log)
	if err := authService.Seed(seedUsers); err != nil {
		return err
	}

	// 3. Moderation, only when words are configured
	var censor services.Censor
	if words := internal.ParseWords(config.CensoredWords); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, censorChar, log)
		if err != nil {
			return fmt.Errorf("moderation setup failed: %w", err)
		}
		censor = moderator
	}

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	monitor := observability.NewMonitoringManager(log, config.MetricInterval)
	sup.Add(monitor)

	orchestrator := runtime.NewOrchestrator(log, sup,
		runtime.NewRegistry(log, config.MaxSessionsPerUser),
		runtime.NewConversationStore(),
		config.CommandBufferSize, config.HistoryLimit)
	sup.Add(workers.NewChannelCapacityWorker(log, []workers.NamedChannel{orchestrator.Queue()},
		monitor, config.MetricInterval, 0.8))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The actor outlives the signal, it stops once connections have unassigned.
	if err := orchestrator.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 6. HTTP & websocket
	chatService := services.NewChatService(orchestrator, censor, log)
	chatServer := server.NewChatServer(log, chatService, authService, monitor,
		config.SessionBufferSize, config.WriteTimeout)
	debug := internal.DebugHandler(orchestrator.Inspect, monitor.GetLatest, config.WriteTimeout, log)

	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           server.NewRouter(log, chatServer, debug, issuer),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", config.Address(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		orchestrator.Stop()
		return err
	}

	// 8. Final Cleanup: connections end with the base context, then the
	// actor drains what they already queued.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*config.WriteTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	log.Info("Program stopped cleanly")
	return nil
}
