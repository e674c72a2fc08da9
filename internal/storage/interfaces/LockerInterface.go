package interfaces

import "context"

// LockerInterface serializes read-modify-write cycles per key. The returned
// func releases the lock.
type LockerInterface interface {
	Lock(ctx context.Context, key string) (func(), error)
}
