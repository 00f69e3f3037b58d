package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rashmiranjanaiet/ai-web/internal/chat"
	"github.com/rashmiranjanaiet/ai-web/internal/config"
	"github.com/rashmiranjanaiet/ai-web/internal/gateway"
	"github.com/rashmiranjanaiet/ai-web/internal/httpserver"
	"github.com/rashmiranjanaiet/ai-web/internal/live"
	"github.com/rashmiranjanaiet/ai-web/internal/metrics"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	m := metrics.NewMetrics()

	var chatClient *chat.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		chatClient, err = chat.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.ChatModel, cfg.SystemPrompt)
		if err != nil {
			log.Printf("chat client disabled: %v", err)
		}
	}
	var gwChat gateway.Chat
	var srvChat httpserver.Chat
	if chatClient != nil {
		gwChat = chatClient
		srvChat = chatClient
	}

	liveCfg := live.Config{
		URL:          cfg.LiveURL,
		APIKey:       cfg.GeminiAPIKey,
		Model:        cfg.LiveModel,
		SystemPrompt: cfg.SystemPrompt,
		Voice:        cfg.Voice,
	}
	gw := gateway.NewHandler(liveCfg, gwChat, m)
	srv := httpserver.New(gw, srvChat, m)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
