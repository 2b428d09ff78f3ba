package repository

import (
	"context"
	"errors"
	"time"

	"guestcart/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisCartStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCartStorage stores carts as plain string values. A zero ttl keeps
// them until they are deleted.
func NewRedisCartStorage(ctx context.Context, redis_conn *redis.Client, ttl time.Duration) (*redisCartStorage, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redis_conn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &redisCartStorage{
		rdb: redis_conn,
		ttl: ttl,
	}, nil
}

func (c *redisCartStorage) GetCart(ctx context.Context, key string) (data []byte, exists bool, err error) {
	data, err = c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		logrus.WithField("cart_key", key).WithError(err).Error("GetCart: failed to read from redis")
		return nil, false, models.ErrServerError
	}
	return data, true, nil
}

func (c *redisCartStorage) SetCart(ctx context.Context, key string, data []byte) error {
	err := c.rdb.Set(ctx, key, data, c.ttl).Err()
	if err != nil {
		logrus.WithField("cart_key", key).WithError(err).Error("SetCart: failed to write to redis")
		return models.ErrServerError
	}
	return nil
}

func (c *redisCartStorage) DeleteCart(ctx context.Context, key string) error {
	err := c.rdb.Del(ctx, key).Err()
	if err != nil {
		logrus.WithField("cart_key", key).WithError(err).Error("DeleteCart: failed to delete from redis")
		return models.ErrServerError
	}
	return nil
}
