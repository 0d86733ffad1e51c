package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/nexchakra/showcase/config"
	"github.com/nexchakra/showcase/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is returned when no cart session exists for the customer
var ErrNotFound = errors.New("cart session not found")

// Store persists ephemeral cart sessions with a TTL. Sessions disappear on
// checkout or expiry; they are never written to the database.
type Store interface {
	Get(ctx context.Context, customerID int64) (*domain.CartSession, error)
	Put(ctx context.Context, sess *domain.CartSession, ttl time.Duration) error
	Delete(ctx context.Context, customerID int64) error
}

// RedisStore keeps cart sessions in Redis under cart:<customer id>
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient dials Redis using the application configuration
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Passwd,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(customerID int64) string {
	return fmt.Sprintf("cart:%d", customerID)
}

func (s *RedisStore) Get(ctx context.Context, customerID int64) (*domain.CartSession, error) {
	data, err := s.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess domain.CartSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *domain.CartSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(sess.CustomerId), data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, customerID int64) error {
	return s.client.Del(ctx, cartKey(customerID)).Err()
}
