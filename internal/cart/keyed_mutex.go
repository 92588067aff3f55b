package cart

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes cart mutations per user. Every mutating operation is a
// read-modify-write of one cart record, so two requests for the same user must
// not interleave; requests for different users proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[uuid.UUID]*userLock{}}
}

// Lock acquires the mutex for the given key and returns the release func.
func (k *keyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &userLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
