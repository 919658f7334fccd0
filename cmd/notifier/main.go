package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"turfbook/internal/notify"
	"turfbook/pkg/config"
	"turfbook/pkg/kafka"
)

const (
	ServiceName   = "turfbook-notifier"
	ConsumerGroup = "turfbook-notifier"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	notifier := notify.NewConsoleNotifier(cfg.Log)
	handler := notify.NewBookingEventHandler(notifier, cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafka.DefaultConfig(cfg.KafkaBrokers),
		cfg.BookingEventTopic,
		ConsumerGroup,
		handler,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Notifier worker started", "topic", cfg.BookingEventTopic, "group", ConsumerGroup)
	if err := consumer.Run(ctx, func(err error) {
		cfg.Log.Error("Failed to process message", "error", err)
	}); err != nil {
		cfg.Log.Fatal("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Notifier worker stopped")
}
