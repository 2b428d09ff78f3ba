package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guestcart/entities"
	"guestcart/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ServerCart is the authenticated cart owned by the backend: product id to
// quantity, stored as JSON under the user's cart key.
type ServerCart struct {
	Items map[int64]int `json:"items"`
}

type ServerCartRepository interface {
	GetCart(ctx context.Context, cartKey string) (res ServerCart, err error)
	AddCartItem(ctx context.Context, cartKey string, productId int64, quantity int) (err error)
}

type ServerCartRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewServerCartRepository(ctx context.Context, redis_conn *redis.Client, ttl time.Duration) (ServerCartRepository, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redis_conn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &ServerCartRepo{
		rdb: redis_conn,
		ttl: ttl,
	}, nil
}

func (c *ServerCartRepo) setCart(ctx context.Context, cartKey string, cart ServerCart) (err error) {
	jsonData, err := json.Marshal(cart)
	if err != nil {
		logrus.WithError(err).Error("SetCart: marshal failed")
		err = models.ErrServerError
		return
	}
	err = c.rdb.Set(ctx, cartKey, jsonData, c.ttl).Err()
	if err != nil {
		logrus.WithField("cart_key", cartKey).WithError(err).Error("SetCart: failed to write to redis")
		err = models.ErrServerError
	}
	return
}

func (c *ServerCartRepo) GetCart(ctx context.Context, cartKey string) (res ServerCart, err error) {
	res = ServerCart{Items: make(map[int64]int)}
	val, e := c.rdb.Get(ctx, cartKey).Result()
	if e != nil {
		if e == redis.Nil {
			return
		}
		logrus.WithField("cart_key", cartKey).WithError(e).Error("GetCart: failed to read from redis")
		err = models.ErrServerError
		return
	}
	err = json.Unmarshal([]byte(val), &res)
	if err != nil {
		logrus.WithField("cart_key", cartKey).WithError(err).Error("GetCart: unmarshal failed")
		err = models.ErrServerError
		return
	}
	if res.Items == nil {
		res.Items = make(map[int64]int)
	}
	return
}

func (c *ServerCartRepo) AddCartItem(ctx context.Context, cartKey string, productId int64, quantity int) (err error) {
	if quantity <= 0 || quantity > entities.MaxQuantity {
		err = fmt.Errorf("%w: quantity out of range", models.ErrBadRequest)
		return
	}
	cart, e := c.GetCart(ctx, cartKey)
	if e != nil {
		err = e
		return
	}
	if cart.Items[productId] > entities.MaxQuantity-quantity {
		logrus.WithFields(logrus.Fields{
			"cart_key":   cartKey,
			"product_id": productId,
		}).Warn("AddCartItem: line quantity limit reached")
		err = fmt.Errorf("%w: line quantity cannot exceed %d", models.ErrBadRequest, entities.MaxQuantity)
		return
	}
	cart.Items[productId] = cart.Items[productId] + quantity
	err = c.setCart(ctx, cartKey, cart)
	return
}
