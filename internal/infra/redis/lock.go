package redis

import (
	"context"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/ports/repository"

	"github.com/google/uuid"
)

var _ repository.Locker = (*Locker)(nil)

// Locker is a SET NX based lock shared by every app instance.
type Locker struct {
	client  RedisClient
	ttl     time.Duration
	tries   int
	backoff time.Duration
}

func NewLocker(c RedisClient, ttl time.Duration) *Locker {
	return &Locker{client: c, ttl: ttl, tries: 40, backoff: 50 * time.Millisecond}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	key = "pm_lock:" + key
	token := uuid.NewString()
	for i := 0; i < l.tries; i++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl)
		if err == nil && ok {
			return func() {
				// background ctx: the request may already be cancelled
				_ = l.client.DelIfEquals(context.Background(), key, token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, domain.ErrLockBusy
}
