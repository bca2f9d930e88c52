package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/ArteenM/File-Sharing/internal/logger"
	signalrelay "github.com/ArteenM/File-Sharing/internal/signal"
)

func main() {
	addr := flag.String("addr", ":9090", "address to listen on")
	flag.Parse()

	log := logger.NewLogger()

	srv, err := signalrelay.NewServer(signalrelay.Config{Addr: *addr, Logger: log})
	if err != nil {
		log.Fatalf("Failed to start signaling server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Signaling server error: %v", err)
	}
	_ = srv.Shutdown()
}
