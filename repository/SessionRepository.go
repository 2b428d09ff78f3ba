package repository

import (
	"context"
	"errors"
	"strconv"

	"guestcart/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SessionRepository reads the sessions the auth service writes as redis
// hashes with "userId" and "role" fields.
type SessionRepository interface {
	GetUserSessionInfo(ctx context.Context, sessionId string) (session models.UserSession, exists bool, err error)
}

type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepository(ctx context.Context, redis_conn *redis.Client) (SessionRepository, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redis_conn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &SessionRepo{
		rdb: redis_conn,
	}, nil
}

func (s *SessionRepo) GetUserSessionInfo(ctx context.Context, sessionId string) (session models.UserSession, exists bool, err error) {
	if sessionId == "" {
		return
	}
	val, err := s.rdb.HGetAll(ctx, sessionId).Result()
	if err != nil {
		logrus.WithError(err).Error("GetUserSessionInfo: failed to read session")
		err = models.ErrServerError
		return
	}
	if len(val) == 0 {
		return
	}
	session.UserId, err = strconv.Atoi(val["userId"])
	if err != nil {
		logrus.WithField("userId", val["userId"]).Warn("GetUserSessionInfo: malformed user id")
		err = nil
		return
	}
	session.Role = val["role"]
	exists = true
	return
}
