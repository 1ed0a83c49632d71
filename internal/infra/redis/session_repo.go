package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps page-controller sessions in Redis as JSON.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(id string) string {
	return fmt.Sprintf("pm_session:%s", id)
}

func (s *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id))
	if errors.Is(err, Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionRepo) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(sess.ID), data, s.ttl)
}

func (s *SessionRepo) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.sessionKey(id))
}
