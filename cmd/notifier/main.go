package main

import (
	"context"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"transferdesk/internal/events"
	"transferdesk/internal/notification"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// The notifier worker drains the notification topic and delivers mail. It
// runs as a separate process so slow SMTP gateways never touch API latency.
func main() {
	envErr := godotenv.Load()

	logger, err := zap.NewProduction()
	if os.Getenv("APP_ENV") != "production" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(brokers, ","),
		GroupID: "transferdesk-notifier",
		Topic:   events.NotificationRequestedTopic,
	})
	defer reader.Close()

	smtpAddr := os.Getenv("SMTP_ADDR")
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpAddr == "" || smtpFrom == "" {
		logger.Fatal("SMTP_ADDR and SMTP_FROM are required")
	}

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		host := smtpAddr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	sender := notification.NewSMTPSender(smtpAddr, smtpFrom, auth)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notification.RunConsumer(ctx, reader, sender, logger)
}
