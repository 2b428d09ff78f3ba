package repository

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type memoryCartStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryCartStorage() *memoryCartStorage {
	return &memoryCartStorage{
		carts: make(map[string][]byte),
	}
}

func (s *memoryCartStorage) GetCart(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	data, ok := s.carts[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *memoryCartStorage) SetCart(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.carts[key] = append([]byte(nil), data...)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"cart_key":    key,
		"data_length": len(data),
	}).Debug("Cart stored in memory")
	return nil
}

func (s *memoryCartStorage) DeleteCart(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.carts, key)
	s.mu.Unlock()
	return nil
}
