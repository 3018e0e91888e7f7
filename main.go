package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dmetrikx/neesa/internal/bot"
	"github.com/Dmetrikx/neesa/internal/config"
	"github.com/Dmetrikx/neesa/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			log.Fatalf("Invalid configuration: %s: %s", cfgErr.Field, cfgErr.Message)
		}
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	// Create bot
	b, err := bot.NewBot(cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "error creating bot", "error", err)
		os.Exit(1)
	}

	// Start bot
	if err := b.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "error starting bot", "error", err)
		os.Exit(1)
	}

	// Wait for interrupt signal to gracefully shutdown
	logger.InfoContext(ctx, "bot is now running, press CTRL-C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanly close the bot
	logger.InfoContext(ctx, "shutting down bot")
	if err := b.Close(ctx); err != nil {
		logger.ErrorContext(ctx, "error closing bot", "error", err)
	}
}
