package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"headshot-server/shared/interfaces"
	"headshot-server/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.VisitedStepStore = (*redisVisitedStepStore)(nil)

type redisVisitedStepStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisVisitedStepStore создает Redis-хранилище accepted-посещений.
// TTL ограничивает время жизни набора; ноль означает без срока.
func NewRedisVisitedStepStore(client *redis.Client, logger *zap.Logger, ttl time.Duration) interfaces.VisitedStepStore {
	return &redisVisitedStepStore{
		client: client,
		logger: logger.Named("RedisVisitedStepStore"),
		ttl:    ttl,
	}
}

func visitedStepsKey(scope models.CompletionScope) string {
	return fmt.Sprintf("visited_steps:%s", scope.StorageKey())
}

// GetVisited возвращает сохранённый набор ключей. Отсутствующий ключ и
// повреждённые данные дают пустой набор без ошибки: восстановление посещений
// не должно блокировать сессию.
func (s *redisVisitedStepStore) GetVisited(ctx context.Context, scope models.CompletionScope) ([]models.CategoryKey, error) {
	key := visitedStepsKey(scope)
	s.logger.Debug("Getting visited steps from Redis", zap.String("key", key))

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return []models.CategoryKey{}, nil
		}
		s.logger.Error("Failed to get visited steps from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get visited steps from redis: %w", err)
	}

	var keys []models.CategoryKey
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		s.logger.Warn("Повреждённый набор посещённых шагов в Redis, считаем пустым",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Error(err))
		return []models.CategoryKey{}, nil
	}
	return keys, nil
}

// SaveVisited записывает набор целиком, обновляя TTL.
func (s *redisVisitedStepStore) SaveVisited(ctx context.Context, scope models.CompletionScope, keys []models.CategoryKey) error {
	key := visitedStepsKey(scope)
	if keys == nil {
		keys = []models.CategoryKey{}
	}

	payload, err := json.Marshal(keys)
	if err != nil {
		s.logger.Error("Failed to marshal visited steps", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to marshal visited steps: %w", err)
	}

	s.logger.Debug("Saving visited steps to Redis",
		zap.String("key", key),
		zap.Int("count", len(keys)),
		zap.Duration("ttl", s.ttl))

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save visited steps to redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to save visited steps to redis: %w", err)
	}
	return nil
}

// ClearVisited удаляет набор посещений scope.
func (s *redisVisitedStepStore) ClearVisited(ctx context.Context, scope models.CompletionScope) error {
	key := visitedStepsKey(scope)
	s.logger.Debug("Deleting visited steps from Redis", zap.String("key", key))

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Failed to delete visited steps from redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete visited steps from redis: %w", err)
	}
	return nil
}
