package resolve

import (
	"context"
	"slices"
	"sync"
)

// Memo is the discovery memo table: one entry per identity key, created by
// exactly one winning claimer.
//
// The winner queries the sources and then calls [Entry.Resolve] or
// [Entry.Release]. Losers get the same entry back and may [Entry.Wait] for
// the winner's outcome; they never query again. Memo is safe for concurrent
// use.
type Memo struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemo creates an empty memo table.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]*Entry)}
}

// Claim returns the entry for key and whether this call created it.
func (m *Memo) Claim(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e, false
	}
	e := &Entry{done: make(chan struct{})}
	m.entries[key] = e
	return e, true
}

// Len returns the number of claimed keys.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Packages returns every resolved package, ordered by id then version.
// Entries that were released or are still pending are skipped.
func (m *Memo) Packages() []*PackageInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*PackageInfo
	for _, e := range m.entries {
		if info, ok := e.result(); ok {
			out = append(out, info)
		}
	}
	slices.SortFunc(out, comparePackages)
	return out
}

// Entry is the memoized outcome for one identity.
type Entry struct {
	once sync.Once
	done chan struct{}
	info *PackageInfo
}

// Resolve stores info and wakes all waiters. Only the first Resolve or
// Release has any effect.
func (e *Entry) Resolve(info *PackageInfo) {
	e.once.Do(func() {
		e.info = info
		close(e.done)
	})
}

// Release marks the identity as unresolved and wakes all waiters.
func (e *Entry) Release() {
	e.once.Do(func() { close(e.done) })
}

// Wait blocks until the winner settles the entry or ctx is done.
// It returns the resolved package, or false if the entry was released.
func (e *Entry) Wait(ctx context.Context) (*PackageInfo, bool, error) {
	select {
	case <-e.done:
		return e.info, e.info != nil, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (e *Entry) result() (*PackageInfo, bool) {
	select {
	case <-e.done:
		return e.info, e.info != nil
	default:
		return nil, false
	}
}
