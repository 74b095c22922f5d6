package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/socket-games/server/internal/config"
	"github.com/socket-games/server/internal/game/connectfour"
	"github.com/socket-games/server/internal/game/dart"
	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/game/tiktaktoe"
	"github.com/socket-games/server/internal/server"
)

func main() {
	// optional env file for deploy overrides
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config %s not loaded (%v), using defaults", *configPath, err)
		cfg = config.Default()
	}

	registry := engine.NewRegistry()
	for _, t := range []engine.Type{
		tiktaktoe.GameType,
		connectfour.GameType,
		dart.GameType,
	} {
		if err := registry.Register(t); err != nil {
			log.Fatalf("failed to register game %s: %v", t.Namespace, err)
		}
	}

	srv := server.NewServer(cfg, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
