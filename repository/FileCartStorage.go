package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"guestcart/models"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

var errInvalidKey = errors.New("invalid cart key")

type fileCartStorage struct {
	basePath string
}

// NewFileCartStorage keeps one <key>.json file per cart under basePath.
func NewFileCartStorage(basePath string) (*fileCartStorage, error) {
	if basePath == "" {
		return nil, errors.New("base path must be non-empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fileCartStorage{basePath: basePath}, nil
}

func (s *fileCartStorage) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

func (s *fileCartStorage) GetCart(ctx context.Context, key string) ([]byte, bool, error) {
	filePath, err := s.path(key)
	if err != nil {
		return nil, false, errors.Join(models.ErrBadRequest, err)
	}
	log := logrus.WithFields(logrus.Fields{"cart_key": key, "file_path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		log.WithError(err).Error("Failed to read cart file")
		return nil, false, models.ErrServerError
	}
	return data, true, nil
}

// SetCart writes through a temp file and a rename so a crash never leaves
// a half-written record behind.
func (s *fileCartStorage) SetCart(ctx context.Context, key string, data []byte) error {
	filePath, err := s.path(key)
	if err != nil {
		return errors.Join(models.ErrBadRequest, err)
	}
	log := logrus.WithFields(logrus.Fields{"cart_key": key, "file_path": filePath})

	tmpPath := filepath.Join(s.basePath, "."+key+"."+ulid.Make().String()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write cart file")
		return models.ErrServerError
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		log.WithError(err).Error("Failed to replace cart file")
		return models.ErrServerError
	}

	log.WithField("data_length", len(data)).Debug("Cart file saved")
	return nil
}

func (s *fileCartStorage) DeleteCart(ctx context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return errors.Join(models.ErrBadRequest, err)
	}
	log := logrus.WithFields(logrus.Fields{"cart_key": key, "file_path": filePath})

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.WithError(err).Error("Failed to delete cart file")
		return models.ErrServerError
	}
	log.Debug("Cart file deleted")
	return nil
}
