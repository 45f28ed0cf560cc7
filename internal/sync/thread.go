// Package sync keeps the in-memory message list of an open chat current.
// Two interchangeable transports feed the same merge path: a fixed-interval
// poller and a realtime document subscription.
package sync

import (
	gosync "sync"

	"github.com/chattrix/chattrix/internal/record"
)

// Thread holds the ordered message list for one open chat view. It is owned
// by that view's lifetime: merges only ever append, never remove or reorder,
// and nothing outside the view mutates it.
type Thread struct {
	mu      gosync.Mutex
	records []record.Record
}

// NewThread creates an empty thread.
func NewThread() *Thread {
	return &Thread{}
}

// Load seeds the thread with decoded history, replacing current contents.
func (t *Thread) Load(recs []record.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records[:0], recs...)
}

// Merge appends rec unless a held record already carries the same timestamp
// value, and reports whether it appended. The timestamp is the sole
// de-duplication key: two distinct messages stamped in the same millisecond
// are treated as duplicates.
func (t *Thread) Merge(rec record.Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, held := range t.records {
		if held.Timestamp == rec.Timestamp {
			return false
		}
	}
	t.records = append(t.records, rec)
	return true
}

// Records returns a copy of the current message list in arrival order.
func (t *Thread) Records() []record.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]record.Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of held records.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
