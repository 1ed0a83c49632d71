package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// SessionRepo keeps sessions in process memory. Values are stored
// serialized so callers never share pointers with the store.
type SessionRepo struct {
	mu    sync.Mutex
	store map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{store: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	e, ok := r.store[id]
	if ok && r.ttl > 0 && r.now().After(e.expiresAt) {
		delete(r.store, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	var s model.Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	if s == nil || s.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[s.ID] = entry{data: data, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (r *SessionRepo) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, e := range r.store {
		if now.After(e.expiresAt) {
			delete(r.store, id)
			n++
		}
	}
	return n
}
