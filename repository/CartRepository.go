package repository

import (
	"context"
	"database/sql"
	"fmt"

	"guestcart/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CartStorage is the key-value store the guest cart is persisted in.
// Records are opaque JSON blobs; the service owns their shape.
type CartStorage interface {
	GetCart(ctx context.Context, key string) (data []byte, exists bool, err error)
	SetCart(ctx context.Context, key string, data []byte) error
	// DeleteCart succeeds when the key does not exist.
	DeleteCart(ctx context.Context, key string) error
}

// NewCartStorage picks the backend named by cfg.StorageType.
func NewCartStorage(ctx context.Context, cfg config.Config) (CartStorage, error) {
	fields := logrus.Fields{"storageType": cfg.StorageType}
	var (
		storage CartStorage
		err     error
	)

	switch cfg.StorageType {
	case "filesystem":
		fields["basePath"] = cfg.LocalStoragePath
		storage, err = NewFileCartStorage(cfg.LocalStoragePath)
	case "sqlite":
		fields["dataSourceName"] = cfg.DataSourceName
		storage, err = openSQLCartStorage(ctx, "sqlite3", cfg.DataSourceName, SQLite)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set for postgres storage")
		}
		storage, err = openSQLCartStorage(ctx, "postgres", cfg.DatabaseURL, Postgres)
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR must be set for redis storage")
		}
		fields["redisAddr"] = cfg.RedisAddr
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		storage, err = NewRedisCartStorage(ctx, rdb, cfg.CartTTL)
	case "", "memory":
		fields["storageType"] = "in-memory"
		storage = NewMemoryCartStorage()
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("failed to open cart storage")
		return nil, err
	}

	logrus.WithFields(fields).Info("Use storage")
	return storage, nil
}

// openSQLCartStorage owns the *sql.DB it opens until the storage is ready.
func openSQLCartStorage(ctx context.Context, driver, dsn string, dialect Dialect) (CartStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	storage, err := newSQLCartStorageOrClose(ctx, db, dialect)
	if err != nil {
		return nil, err
	}
	return storage, nil
}

func newSQLCartStorageOrClose(ctx context.Context, db *sql.DB, dialect Dialect) (*sqlCartStorage, error) {
	storage, err := NewSQLCartStorage(ctx, db, dialect)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close db after storage setup error")
		}
		return nil, err
	}
	return storage, nil
}
