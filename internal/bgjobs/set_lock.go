package bgjobs

import "sync"

// SetLocker hands out in-memory per-set locks. Sampling takes a shared
// lock; churn takes an exclusive one so the catalog is not rewritten under
// a reader.
type SetLocker struct {
	mu sync.Mutex
	m  map[uint]*SetLock
}

func NewSetLocker() *SetLocker {
	return &SetLocker{
		m: make(map[uint]*SetLock),
	}
}

// Get returns a lock for the set.
func (l *SetLocker) Get(setID uint) *SetLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.m[setID]
	if !ok {
		lock = &SetLock{}
		l.m[setID] = lock
	}
	return lock
}

type SetLock struct {
	mu sync.RWMutex
}

func (l *SetLock) ExclusiveLock() func() {
	l.mu.Lock()
	return l.mu.Unlock
}

func (l *SetLock) TryExclusiveLock() func() {
	if !l.mu.TryLock() {
		return nil
	}
	return l.mu.Unlock
}

func (l *SetLock) SharedLock() func() {
	l.mu.RLock()
	return l.mu.RUnlock
}
