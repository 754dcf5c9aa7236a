// Пакет cache предоставляет обёртку над Redis для кэширования товаров, правил и представлений остатков
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss возвращается, когда ключ отсутствует в Redis.
// Позволяет отличить промах кэша от прочих ошибок.
var ErrCacheMiss = errors.New("cache miss")

// scanBatch задаёт, сколько ключей запрашивать за один SCAN
const scanBatch = 100

// RedisClient оборачивает *redis.Client и приводит ошибки к ErrCacheMiss там, где это нужно
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient создаёт RedisClient с заданными опциями подключения
func NewRedisClient(opts *redis.Options) *RedisClient {
	return &RedisClient{client: redis.NewClient(opts)}
}

// Set сохраняет value под ключом key на время expiration
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get возвращает значение по ключу; при отсутствии ключа возвращает ErrCacheMiss
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Invalidate удаляет ключ key
func (r *RedisClient) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// InvalidatePrefix удаляет все ключи, начинающиеся с prefix.
// Используется для страниц списков, у которых в ключе зашиты limit и offset.
func (r *RedisClient) InvalidatePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping проверяет доступность Redis
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}
