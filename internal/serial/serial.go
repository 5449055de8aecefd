// Package serial orders work per entity: a keyed lock so mutations of the
// same entity never overlap, and a sequence so a stale response can be told
// apart from the latest one.
package serial

import (
	"sync"
	"sync/atomic"
)

// Keyed is a set of mutexes created on demand, one per key. Locks for a key
// are released from the map once nobody holds or waits for them.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the unlock func.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			k.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// Sequence issues increasing tokens. A token is current until a later one
// is issued.
type Sequence struct {
	n atomic.Uint64
}

// Next issues a new token, making every earlier token stale.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Current reports whether token is the latest issued.
func (s *Sequence) Current(token uint64) bool {
	return s.n.Load() == token
}
