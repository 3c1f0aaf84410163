package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskboard/config"
	mqcontracts "taskboard/contracts/mq"
	"taskboard/internal/mailer"
	"taskboard/internal/mqhandler"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notifier...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("smtp_host", cfg.SMTP.Host),
	)

	m := mailer.New(cfg.SMTP, log)
	resetCodeHandler := mqhandler.NewResetCodeHandler(m, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "notification.reset_code.q", mqcontracts.RoutingKeyResetCode, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(resetCodeHandler.Handle)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Reset code consumer failed", zap.Error(err))
		}
	}()

	log.Info("notifier is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier...")
	consumer.Close()
}
