package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatline/api"
	"chatline/auth"
	"chatline/directory"
	"chatline/realtime"
	"chatline/repositories"
	"chatline/runtime"
	"chatline/services"
	"chatline/storage"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every deferred cleanup executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB, Bluge, upload directory)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := directory.NewIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("user index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing user index...")
		_ = index.Close()
	}()

	objectStore, err := storage.NewDiskStore(config.UploadDir, log)
	if err != nil {
		return err
	}

	// 3. Repositories & Services
	userRepository := repositories.NewUserRepository(db)
	chatRepository := repositories.NewChatRepository(db)
	messageRepository := repositories.NewMessageRepository(db)

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	registry := realtime.NewRegistry(log)

	var broadcaster services.Broadcaster
	if config.BridgeRealtime {
		log.Info("Realtime bridge enabled: persisted messages will be broadcast")
		broadcaster = registry
	}

	authService := services.NewAuthService(userRepository, index, tokens, log)
	userService := services.NewUserService(userRepository, index, log)
	chatService := services.NewChatService(chatRepository, log)
	messageService := services.NewMessageService(
		messageRepository, chatRepository, objectStore, broadcaster, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers
	supervisor := runtime.NewSupervisor(log)
	supervisor.Add(runtime.NewBadgerGCWorker(db, config.GCInterval, log))
	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervisorDone)
	}()

	// 6. HTTP server (REST + WebSocket gateway)
	gateway := realtime.NewGateway(registry, config.SessionBufferSize, log)
	router := api.NewRouter(
		api.NewAuthHandler(authService, log),
		api.NewUserHandler(userService, log),
		api.NewChatHandler(chatService, messageService, config.MaxUploadBytes, log),
		gateway,
		objectStore.Dir(),
		auth.Middleware(tokens),
	)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	supervisor.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
