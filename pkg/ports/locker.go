package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes snapshot writes for one layout across replicas
// sharing a store. The in-process per-layout mutex in the snapshot Manager still
// applies; this lock only covers other processes.
type DistributedLocker interface {
	// Lock blocks until the layout key is held or ctx is done. The lock expires
	// after ttl if the holder dies. The returned UnlockFunc must be called.
	Lock(ctx context.Context, layoutKey string, ttl time.Duration) (UnlockFunc, error)
}
