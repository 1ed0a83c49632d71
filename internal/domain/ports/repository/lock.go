package repository

import "context"

// Locker serializes state transitions of a single session. The returned
// func releases the lock and is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
