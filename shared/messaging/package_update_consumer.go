package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"headshot-server/shared/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CatalogUpdater - та часть каталога, которая нужна консьюмеру: убрать
// архивный пакет из кэша и перечитать изменённый из репозитория.
type CatalogUpdater interface {
	RemovePackage(packageID uuid.UUID, slug string)
	RefreshPackage(ctx context.Context, packageID uuid.UUID) error
}

// PackageUpdateConsumer слушает fanout exchange событий пакетов и доводит
// кэш каталога текущего инстанса до актуального состояния.
type PackageUpdateConsumer struct {
	conn         *amqp091.Connection
	ch           *amqp091.Channel
	updater      CatalogUpdater
	logger       *zap.Logger
	exchangeName string
	queueName    string
	consumerTag  string
}

// NewPackageUpdateConsumer создает консьюмера с временной эксклюзивной
// очередью. Пустое exchangeName означает стандартный exchange сервиса.
func NewPackageUpdateConsumer(conn *amqp091.Connection, updater CatalogUpdater, logger *zap.Logger, exchangeName string) (*PackageUpdateConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	if updater == nil {
		return nil, fmt.Errorf("CatalogUpdater is nil")
	}
	if exchangeName == "" {
		exchangeName = packageUpdateExchange
	}

	consumerTag := fmt.Sprintf("package_update_consumer_%d", time.Now().UnixNano())
	consumer := &PackageUpdateConsumer{
		conn:         conn,
		updater:      updater,
		logger:       logger.Named("PackageUpdateConsumer").With(zap.String("consumerTag", consumerTag)),
		exchangeName: exchangeName,
		consumerTag:  consumerTag,
	}

	if err := consumer.setupChannelAndQueue(); err != nil {
		return nil, err
	}

	consumer.logger.Info("PackageUpdateConsumer инициализирован",
		zap.String("exchange", consumer.exchangeName),
		zap.String("generatedQueueName", consumer.queueName))
	return consumer, nil
}

// setupChannelAndQueue создает канал, объявляет exchange, очередь и биндинг.
func (c *PackageUpdateConsumer) setupChannelAndQueue() error {
	var err error
	c.ch, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Объявляем Exchange (fanout, durable)
	err = c.ch.ExchangeDeclare(
		c.exchangeName,
		packageUpdateExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare exchange '%s': %w", c.exchangeName, err)
	}

	// Временная эксклюзивная очередь, имя генерирует брокер.
	q, err := c.ch.QueueDeclare(
		"",    // name (пустое для автогенерации)
		false, // durable
		true,  // delete when unused (auto-delete)
		true,  // exclusive (только это соединение)
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	c.queueName = q.Name

	err = c.ch.QueueBind(
		c.queueName,
		"", // routing key (не используется для fanout)
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.queueName, c.exchangeName, err)
	}

	return nil
}

// StartConsuming запускает обработку сообщений в отдельной горутине.
// Повреждённые сообщения и ошибки обновления кэша логируются и
// подтверждаются: события best-effort, полный Refresh каталога их догонит.
func (c *PackageUpdateConsumer) StartConsuming(ctx context.Context) error {
	c.logger.Info("Начало прослушивания событий изменения пакетов...")

	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for d := range deliveries {
			c.handleDelivery(ctx, d)
		}
		c.logger.Info("Канал событий пакетов закрыт, консьюмер остановлен")
	}()

	return nil
}

func (c *PackageUpdateConsumer) handleDelivery(ctx context.Context, d amqp091.Delivery) {
	var payload PackageUpdatePayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		c.logger.Error("failed to unmarshal package update message", zap.Error(err))
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("failed to acknowledge malformed message", zap.Error(ackErr))
		}
		return
	}

	log := c.logger.With(
		zap.String("packageID", payload.PackageID.String()),
		zap.String("slug", payload.Slug),
		zap.String("status", string(payload.Status)))

	if payload.Status == models.PackageStatusArchived {
		c.updater.RemovePackage(payload.PackageID, payload.Slug)
		log.Info("Архивный пакет убран из кэша каталога")
	} else if err := c.updater.RefreshPackage(ctx, payload.PackageID); err != nil {
		log.Error("Не удалось обновить пакет в кэше каталога", zap.Error(err))
	} else {
		log.Info("Пакет обновлён в кэше каталога")
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to acknowledge message", zap.Error(err))
	}
}

// Stop отменяет подписку и закрывает канал.
func (c *PackageUpdateConsumer) Stop() error {
	c.logger.Info("Остановка PackageUpdateConsumer...")
	if c.ch == nil {
		return nil
	}
	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Warn("Failed to cancel consumer", zap.Error(err))
	}
	return c.ch.Close()
}
