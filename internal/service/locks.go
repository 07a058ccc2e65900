package service

import "sync"

// SessionLocks serializes writers per session ID. Entries are reference
// counted and removed once no goroutine holds or waits for them, so the map
// only ever contains sessions with work in flight.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocks creates an empty lock table. Services that write to the
// same sessions must share one table.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the caller holds sessionID and returns the unlock func.
func (l *SessionLocks) Lock(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// size reports how many sessions currently have a lock entry.
func (l *SessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
