package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"replydesk/ai"
	"replydesk/auth"
	"replydesk/classify"
	"replydesk/connector"
	"replydesk/conversation"
	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/internal"
	"replydesk/logs"
	"replydesk/observability"
	"replydesk/repositories"
	"replydesk/runtime"
	"replydesk/runtime/workers"
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
		fmt.Fprintf(os.Stderr, "Agent terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the agent lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the console and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	sources, err := config.Sources()
	if err != nil {
		return exitConfig, err
	}

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	// Defer ensures the database lock is released and buffers are flushed before the function returns.
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories, classifier and the connector fleet
	messageRepository := repositories.NewMessageRepository(db, blugeWriter, log, config.LimitMessages, config.SearchPageSize)
	responseRepository := repositories.NewResponseRepository(db, log)
	preferenceRepository := repositories.NewPreferenceRepository(db)
	operatorRepository := repositories.NewOperatorRepository(db)

	classifier, err := classify.NewClassifier()
	if err != nil {
		return exitRuntime, fmt.Errorf("classifier build failed: %w", err)
	}

	events := make(chan event.Event, config.BufferSize)
	registry := connector.BuildRegistry(log, connector.Credentials{
		TelegramToken:  config.TelegramToken,
		GmailToken:     config.GmailToken,
		LinkedinToken:  config.LinkedinToken,
		FacebookToken:  config.FacebookToken,
		InstagramToken: config.InstagramToken,
		SlackToken:     config.SlackToken,
		SlackChannel:   config.SlackChannel,
		Sources:        sources,
		SimulatorSeed:  config.SimulatorSeed,
		RPMOverride:    config.RPMOverride,
	}, events)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, config.ConnectTimeout)
	registry.ConnectAll(connectCtx)
	cancelConnect()

	monitor := observability.NewMonitor(log)
	drafter := ai.NewDrafter(log, config.OpenAIKey, config.OpenAIModel)

	// 5. Conversation surface
	tokens := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	gate := auth.NewGate(tokens, config.OperatorHash != "")
	controller := conversation.NewController(log, registry,
		messageRepository, responseRepository, preferenceRepository, operatorRepository,
		drafter, gate, tokens, events, conversation.ControllerConfig{
			DefaultOperator: config.Operator,
			OperatorHash:    config.OperatorHash,
			DraftMaxTokens:  config.DraftMaxTokens,
		})
	console := workers.NewConsoleWorker(log, controller, config.Operator, os.Stdin, os.Stdout)

	// 6. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval, events)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, classifier,
		messageRepository, monitor, events, runtime.Intervals{
			Poll:             config.PollInterval,
			Backoff:          config.BackoffInterval,
			Metric:           config.MetricInterval,
			NotifyTimeout:    config.NotifyTimeout,
			LatencyThreshold: config.LatencyThreshold,
		})
	orchestrator.Add(console)
	if config.NotifySource != "" {
		orchestrator.Add(connector.NewRegistryNotifier(registry, domain.Source(config.NotifySource), config.NotifyRecipient))
	}

	if config.DebugPort > 0 {
		debug := internal.StartDebugServer(log, db, config.DebugPort, nil, func() any { return monitor.Snapshot() })
		defer func() { _ = debug.Close() }()
	}

	// Error (console & orchestrator)
	errChan := make(chan error, 2)

	// 7. Start the Engine (Workers and Fanout)
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		log.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 8. Console Setup
	go func() {
		// Console exit (EOF or quit) ends the whole agent.
		defer stop()
		log.Info("Starting console", "operator", config.Operator, "at", time.Now().UTC())
		if err := console.Run(ctx); err != nil {
			errChan <- fmt.Errorf("console error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	// The execution blocks here until either a signal is received or a component crashes.
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 10. Final Cleanup (Graceful Shutdown)
	// We let workers drain their channels before the stores close.
	log.Info("Shutting down gracefully...")
	orchestrator.Stop()
	<-orchestratorDone
	log.Info("Program stopped cleanly")

	return exitOK, nil
}
