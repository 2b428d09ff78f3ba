package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"guestcart/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Dialect holds the statements that differ between the SQL backends.
type Dialect struct {
	Name   string
	Create string
	Select string
	Upsert string
	Delete string
}

var SQLite = Dialect{
	Name: "sqlite",
	Create: `CREATE TABLE IF NOT EXISTS guest_carts (
		cart_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	Select: "SELECT data FROM guest_carts WHERE cart_key = ?",
	Upsert: `INSERT INTO guest_carts (cart_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (cart_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	Delete: "DELETE FROM guest_carts WHERE cart_key = ?",
}

var Postgres = Dialect{
	Name: "postgres",
	Create: `CREATE TABLE IF NOT EXISTS guest_carts (
		cart_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	Select: "SELECT data FROM guest_carts WHERE cart_key = $1",
	Upsert: `INSERT INTO guest_carts (cart_key, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (cart_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	Delete: "DELETE FROM guest_carts WHERE cart_key = $1",
}

type sqlCartStorage struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLCartStorage pings db and creates the guest_carts table if needed.
func NewSQLCartStorage(ctx context.Context, db *sql.DB, dialect Dialect) (*sqlCartStorage, error) {
	if db == nil {
		return nil, errors.New("conn must be non-nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, dialect.Create); err != nil {
		return nil, err
	}
	return &sqlCartStorage{db: db, dialect: dialect}, nil
}

func (s *sqlCartStorage) GetCart(ctx context.Context, key string) (data []byte, exists bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, s.dialect.Select, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
			return
		}
		logrus.WithFields(logrus.Fields{"cart_key": key, "dialect": s.dialect.Name}).
			WithError(err).Error("Failed to read cart row")
		err = models.ErrServerError
		return
	}
	return []byte(raw), true, nil
}

func (s *sqlCartStorage) SetCart(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, string(data), time.Now().UTC())
	if err != nil {
		logrus.WithFields(logrus.Fields{"cart_key": key, "dialect": s.dialect.Name}).
			WithError(err).Error("Failed to save cart row")
		return models.ErrServerError
	}
	return nil
}

func (s *sqlCartStorage) DeleteCart(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Delete, key)
	if err != nil {
		logrus.WithFields(logrus.Fields{"cart_key": key, "dialect": s.dialect.Name}).
			WithError(err).Error("Failed to delete cart row")
		return models.ErrServerError
	}
	return nil
}

func (s *sqlCartStorage) Close() error {
	return s.db.Close()
}
