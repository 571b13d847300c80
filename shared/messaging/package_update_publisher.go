package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQPackageUpdatePublisher рассылает события изменения пакетов стилей
// через fanout exchange. Каждый инстанс сервиса кастомизации держит своего
// консьюмера, поэтому routing key не нужен.
type RabbitMQPackageUpdatePublisher struct {
	conn         *amqp091.Connection
	ch           *amqp091.Channel
	logger       *zap.Logger
	exchangeName string
}

// NewRabbitMQPackageUpdatePublisher создает издателя событий пакетов.
// Пустое exchangeName означает стандартный exchange сервиса.
func NewRabbitMQPackageUpdatePublisher(conn *amqp091.Connection, logger *zap.Logger, exchangeName string) (*RabbitMQPackageUpdatePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if exchangeName == "" {
		exchangeName = packageUpdateExchange
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for package updates", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем fanout exchange, durable. Повторное объявление безвредно.
	err = ch.ExchangeDeclare(
		exchangeName,
		packageUpdateExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare package update exchange", zap.String("exchange", exchangeName), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}

	logger.Info("Package update exchange declared successfully",
		zap.String("exchange", exchangeName),
		zap.String("type", packageUpdateExchangeType))

	return &RabbitMQPackageUpdatePublisher{
		conn:         conn,
		ch:           ch,
		logger:       logger.Named("PackageUpdatePublisher"),
		exchangeName: exchangeName,
	}, nil
}

// Publish публикует событие изменения пакета.
// payload должен быть типа PackageUpdatePayload; correlationID идёт в
// свойства сообщения для трассировки.
func (p *RabbitMQPackageUpdatePublisher) Publish(ctx context.Context, payload interface{}, correlationID string) error {
	updatePayload, ok := payload.(PackageUpdatePayload)
	if !ok {
		err := fmt.Errorf("invalid payload type for package update: expected PackageUpdatePayload, got %T", payload)
		p.logger.Error("Invalid payload type", zap.Error(err))
		return err
	}

	body, err := json.Marshal(updatePayload)
	if err != nil {
		p.logger.Error("Failed to marshal package update payload", zap.Error(err), zap.Any("payload", updatePayload))
		return fmt.Errorf("failed to marshal package update payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName, // exchange
		"",             // routing key (не используется для fanout)
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			Body:          body,
			Timestamp:     time.Now(),
			CorrelationId: correlationID,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish package update event", zap.Error(err), zap.Any("payload", updatePayload))
		return fmt.Errorf("failed to publish package update event: %w", err)
	}

	p.logger.Debug("Package update event published",
		zap.String("packageID", updatePayload.PackageID.String()),
		zap.String("slug", updatePayload.Slug),
		zap.String("status", string(updatePayload.Status)))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQPackageUpdatePublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
