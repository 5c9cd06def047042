package repository

import (
	"sync"

	"github.com/google/uuid"
)

// idLocker serializes operations per record id (spec.md §5: "within one
// file id, updates are totally ordered"), while letting different ids
// proceed concurrently. It's the direct, dependency-free analogue of a
// per-actor mailbox — a map of *sync.Mutex created lazily, one per id.
type idLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newIDLocker() *idLocker {
	return &idLocker{locks: map[uuid.UUID]*sync.Mutex{}}
}

func (l *idLocker) lockFor(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}

	return m
}

// withLock runs fn while holding id's lock, blocking until any other
// in-flight operation against the same id has released it.
func (l *idLocker) withLock(id uuid.UUID, fn func() error) error {
	m := l.lockFor(id)
	m.Lock()
	defer m.Unlock()

	return fn()
}
