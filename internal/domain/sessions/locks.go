package sessions

import "sync"

// keyedMutex serializes mutating operations per session id, so two
// operators checking out or settling the same session cannot interleave.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// sessionLocks is process-wide: every service mutating a session goes
// through it, so a settlement and a checkout on the same id cannot
// interleave their read-modify-write cycles.
var sessionLocks = newKeyedMutex()

// LockSession takes the per-session mutex and returns the unlock.
func LockSession(id string) func() {
	return sessionLocks.Lock(id)
}

func (k *keyedMutex) Lock(id string) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
