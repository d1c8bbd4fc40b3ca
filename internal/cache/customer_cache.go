// Package cache содержит read-through кэш клиентов поверх Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	// DefaultTTL - время жизни записи по умолчанию.
	DefaultTTL = 5 * time.Minute
	keyPrefix  = "shop:customer:"
)

// CustomerCache кэширует FindByID поверх другого CustomerRepository.
// Ошибки Redis не пробрасываются: запрос уходит в исходный репозиторий.
type CustomerCache struct {
	next   domain.CustomerRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *log.Entry
}

type cachedCustomer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisClient создаёт клиента Redis для адреса addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
	})
}

// NewCustomerCache оборачивает next кэшем. ttl <= 0 заменяется на DefaultTTL.
func NewCustomerCache(next domain.CustomerRepository, client redis.UniversalClient, ttl time.Duration, logger *log.Entry) *CustomerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "customer_cache")
	}
	return &CustomerCache{next: next, client: client, ttl: ttl, logger: logger}
}

func customerKey(id string) string { return keyPrefix + id }

// FindByID сначала ищет клиента в Redis. Отсутствие клиента не кэшируется.
func (c *CustomerCache) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	raw, err := c.client.Get(ctx, customerKey(id)).Bytes()
	switch {
	case err == nil:
		var cached cachedCustomer
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return domain.Customer(cached), nil
		}
		c.logger.WithField("customer_id", id).Warn("corrupted cache entry, falling back")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WithError(err).WithField("customer_id", id).Warn("redis get failed, falling back")
	}

	customer, err := c.next.FindByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	payload, err := json.Marshal(cachedCustomer(customer))
	if err != nil {
		return customer, nil
	}
	if err := c.client.Set(ctx, customerKey(id), payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("customer_id", id).Warn("redis set failed")
	}
	return customer, nil
}

// Invalidate удаляет запись клиента из кэша.
func (c *CustomerCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, customerKey(id)).Err()
}

// Check проверяет доступность Redis; подходит как health.Checker.
func (c *CustomerCache) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
