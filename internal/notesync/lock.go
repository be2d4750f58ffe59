package notesync

import (
	"context"
	"sync"
)

// farmerLocks serializes sync calls per farmer. Entries are dropped once no
// caller holds or waits on them.
type farmerLocks struct {
	mu    sync.Mutex
	locks map[int64]*farmerLock
}

type farmerLock struct {
	sem  chan struct{}
	refs int
}

func newFarmerLocks() *farmerLocks {
	return &farmerLocks{locks: make(map[int64]*farmerLock)}
}

// acquire blocks until the farmer's lock is free or ctx is done.
func (f *farmerLocks) acquire(ctx context.Context, farmerID int64) (func(), error) {
	f.mu.Lock()
	l, ok := f.locks[farmerID]
	if !ok {
		l = &farmerLock{sem: make(chan struct{}, 1)}
		f.locks[farmerID] = l
	}
	l.refs++
	f.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			f.release(farmerID, l)
		}, nil
	case <-ctx.Done():
		f.release(farmerID, l)
		return nil, ctx.Err()
	}
}

func (f *farmerLocks) release(farmerID int64, l *farmerLock) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(f.locks, farmerID)
	}
}
