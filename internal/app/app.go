package app

import (
	"fmt"
	"os"

	"transferdesk/internal/audit"
	"transferdesk/internal/rbac"
	"transferdesk/internal/shared/connection"
	"transferdesk/internal/transfer"
	"transferdesk/internal/upload"
	"transferdesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the process-wide resources behind the HTTP surface.
type App struct {
	Router      *gin.Engine
	DB          *gorm.DB
	Redis       *redis.Client
	KafkaWriter *kafka.Writer
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Build connects the backing services, runs migrations, and mounts every
// module on the router. Environment variables are the only configuration
// source; main loads .env before calling this.
func Build(router *gin.Engine) (*App, error) {
	db, err := connection.ConnectGORMWithRetry(
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "transferdesk"),
		envOr("DB_PORT", "5432"),
		envOr("DB_SSLMODE", "disable"),
		12,
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&rbac.RolePermission{},
		&upload.Upload{},
		&transfer.TransferRequest{},
		&transfer.TransferComment{},
		&transfer.TransferAttachment{},
		&audit.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rdb, err := connection.ConnectRedisWithRetry(envOr("REDIS_ADDR", "localhost:6379"), 12)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// Without a broker the API still runs; notifications are dropped.
	var writer *kafka.Writer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		writer = connection.NewKafkaWriter(brokers)
	} else {
		zap.L().Warn("KAFKA_BROKERS not set, notifications disabled")
	}

	a := &App{
		Router:      router,
		DB:          db,
		Redis:       rdb,
		KafkaWriter: writer,
	}
	if err := a.registerModules(); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases shared resources; call on process exit.
func (a *App) Close() {
	if a.KafkaWriter != nil {
		a.KafkaWriter.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
