package services

import (
	"sync"
)

// VillageLocks is a per-village advisory mutex registry. It only prevents
// redundant reconciliation storms inside one process; correctness is
// carried by the conditional write in the store. Entries are refcounted
// and removed when the last holder releases, so the map cannot grow
// unbounded.
type VillageLocks struct {
	mu      sync.Mutex
	entries map[uint]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewVillageLocks() *VillageLocks {
	return &VillageLocks{
		entries: make(map[uint]*lockEntry),
	}
}

// Acquire blocks until the per-village lock is held and returns the
// release function. Callers must release on all exit paths, normally via
// defer.
func (l *VillageLocks) Acquire(villageID uint) func() {
	l.mu.Lock()
	entry, ok := l.entries[villageID]
	if !ok {
		entry = &lockEntry{}
		l.entries[villageID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, villageID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of live entries, for tests.
func (l *VillageLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
