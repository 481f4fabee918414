package service

import "sync"

// KeyLock hands out one mutex per license id. Entries are dropped once no
// caller holds or waits on them. The zero value is ready to use; share one
// between the Validator and the LicenseService so redeem and validate
// serialize on the same license.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock blocks until id is free and returns the matching unlock func.
func (k *KeyLock) Lock(id string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// Len returns the number of ids currently locked or waited on.
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// or returns k, or fallback when k is nil.
func (k *KeyLock) or(fallback *KeyLock) *KeyLock {
	if k != nil {
		return k
	}
	return fallback
}
