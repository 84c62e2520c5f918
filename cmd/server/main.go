package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/Qwertuhh/leanaura-alpha/ai"
	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/internal"
	"github.com/Qwertuhh/leanaura-alpha/moderation"
	"github.com/Qwertuhh/leanaura-alpha/observability"
	"github.com/Qwertuhh/leanaura-alpha/runtime"
	"github.com/Qwertuhh/leanaura-alpha/runtime/workers"
	"github.com/Qwertuhh/leanaura-alpha/transport/rest"
	"github.com/Qwertuhh/leanaura-alpha/transport/ws"
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
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so that defers execute and the entry point
// stays testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation: embedded blacklists feed the Aho-Corasick automaton.
	censored, err := moderation.LoadCensoredWords()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading censored words: %w", err)
	}
	logger.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(censored.Words), strings.Join(censored.Languages, ",")))

	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}

	// 3. Streaming responder: real backend when a key is configured,
	// scripted canned answers otherwise.
	var responder contract.StreamingResponder
	if config.ResponderAPIKey != "" {
		responder = ai.NewOpenAIResponder(logger,
			config.ResponderAPIKey, config.ResponderBaseURL, config.ResponderModel)
		logger.Info("using streaming responder", "model", config.ResponderModel)
	} else {
		responder = ai.NewScriptedResponder(config.ResponderDelay)
		logger.Info("no responder API key set, using scripted responder")
	}

	// 4. Core assembly: one hub instance owns all room state.
	metrics := observability.NewMetrics()
	sessions := runtime.NewSessionRegistry()
	store := runtime.NewRoomStore(sessions, config.RoomCapacity)
	dir := runtime.NewConnectionDirectory()
	broadcaster := runtime.NewBroadcaster(logger, store, dir, metrics, config.DeliveryTimeout)
	streams := runtime.NewAIStreamCoordinator(logger, responder, broadcaster, metrics)
	hub := runtime.NewRoomHub(logger, sessions, store, dir, broadcaster, streams, &moderator, metrics)

	// 5. Transport: websocket endpoint next to the REST admin surface.
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(logger, hub, config.ConnectionBufferSize))
	mux.Handle("/", rest.NewServer(logger, hub, hub.Stats).Router())

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(workers.NewHTTPServerWorker(logger, server))

	logger.Info("chat server starting", "addr", config.Addr())
	supervisor.Run(ctx)

	logger.Info("chat server stopped")
	return exitOK, nil
}
