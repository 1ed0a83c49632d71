package repository

import (
	"context"

	"parallel-muhit-webapp/internal/domain/model"
)

// SessionRepository stores page-controller sessions. Get returns
// domain.ErrNotFound for unknown or expired IDs.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}
