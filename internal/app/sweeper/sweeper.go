// Package sweeper собирает фоновое приложение деактивации истёкших доступов.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/salonsuccess/salon-manager/internal/config"
	"github.com/salonsuccess/salon-manager/internal/rabbitmq"
	sweeperservice "github.com/salonsuccess/salon-manager/internal/services/sweeper"
	"github.com/salonsuccess/salon-manager/internal/storage/repository"
)

// sweepInterval период между проходами по истёкшим доступам.
const sweepInterval = time.Hour

// App представляет приложение фоновой деактивации.
type App struct {
	sweeperService *sweeperservice.Service
	conn           *amqp.Connection
	ch             *amqp.Channel
	logger         *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	return &App{
		sweeperService: sweeperservice.New(db, logger),
		conn:           conn,
		ch:             ch,
		logger:         logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает цикл деактивации до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sweeperService.Run(ctx, a.ch, sweepInterval)

	<-ctx.Done()

	a.logger.Info("shutting down sweeper service")
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
