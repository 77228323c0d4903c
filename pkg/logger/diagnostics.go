package logger

import (
	"sync"
	"time"
)

// Diagnostics aggregates recoverable skips per kind so a run can report how
// much input it had to drop (malformed comments, failed post fetches) without
// aborting the whole scan.
type Diagnostics struct {
	mu    sync.RWMutex
	kinds map[string]*SkipEntry
}

type SkipEntry struct {
	Kind      string    `json:"kind"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{kinds: make(map[string]*SkipEntry)}
}

// Record counts one skip under kind.
func (d *Diagnostics) Record(kind string) {
	now := time.Now()
	d.mu.Lock()
	e, ok := d.kinds[kind]
	if !ok {
		e = &SkipEntry{Kind: kind, FirstSeen: now}
		d.kinds[kind] = e
	}
	e.Count++
	e.LastSeen = now
	d.mu.Unlock()
}

// Count returns the number of skips recorded under kind.
func (d *Diagnostics) Count(kind string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if e, ok := d.kinds[kind]; ok {
		return e.Count
	}
	return 0
}

// Snapshot copies all entries, for run summaries.
func (d *Diagnostics) Snapshot() []SkipEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]SkipEntry, 0, len(d.kinds))
	for _, e := range d.kinds {
		out = append(out, *e)
	}
	return out
}

// Reset clears all counters, called at the start of a run.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	d.kinds = make(map[string]*SkipEntry)
	d.mu.Unlock()
}
