package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"

	"canvas-lab/chat"
	"canvas-lab/domain"
	"canvas-lab/gate"
	"canvas-lab/grid"
	"canvas-lab/groups"
	"canvas-lab/hub"
	"canvas-lab/moderation"
	"canvas-lab/presence"
	"canvas-lab/repositories"
	"canvas-lab/runtime"
	"canvas-lab/runtime/workers"
	"canvas-lab/services"
	"canvas-lab/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error
// reporting, so every defer (like the database close) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	persistence := repositories.NewPersistence(db, log)

	// 3. Engine state
	counter := gate.NewCounter()
	policy := config.Policy()
	cooldown := gate.NewCooldownGate(counter, policy)
	limiter := gate.NewRateLimiter(counter, policy)
	store := grid.NewStore(config.GridSize, log)
	ring := chat.NewRingBuffer(config.RingCapacity)
	registry := presence.NewRegistry(config.PresenceTTL)
	broadcast := hub.NewHub(log)
	manager := hub.NewManager(log, broadcast, registry)

	replacement, err := replacementRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(splitList(config.CensoredWords), replacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}
	membership := groups.ParseMembership(config.Groups)

	// 4. Workers
	dispatcher := runtime.NewDispatcher(log, broadcast, config.BufferSize)
	persister := runtime.NewPersistWorker(log, dispatcher.PersistQueue(), persistence, config.SinkTimeout)
	warmChannels := lo.Map(splitList(config.WarmChannels), func(name string, _ int) domain.ChannelID {
		return domain.ChannelID(name)
	})
	warmup := runtime.NewWarmup(log, persistence, ring, store, warmChannels, config.RingCapacity)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(warmup, dispatcher, persister)

	// 5. Services & Gateway
	canvasService := services.NewCanvasService(log, cooldown, store, dispatcher)
	chatService := services.NewChatService(log, cooldown, limiter, ring, &moderator, membership,
		dispatcher, config.MaxContentLength)
	presenceService := services.NewPresenceService(registry)
	gateway := ws.NewGateway(log, contextIdentity{}, membership, limiter, manager,
		canvasService, chatService, presenceService, config.ConnectionBufferSize, config.RingCapacity)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sup.Run(ctx)

	// 7. HTTP server for the websocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", WithIdentity(gateway))
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		sup.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	return nil
}

func splitList(spec string) []string {
	var out []string
	for _, item := range strings.Split(spec, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func replacementRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q", str)
	}
	return r[0], nil
}
