package repository

import (
	"sync"
	"time"
)

const (
	dedupeCapacity = 500
	dedupeTTL      = time.Hour
)

// memoryDedupe is the bounded fallback used when the persistent dedupe store
// is unavailable. Oldest entries are evicted past capacity; entries expire
// after the TTL so a long outage does not pin memory.
type memoryDedupe struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	order []string
	clock func() time.Time
}

func newMemoryDedupe() *memoryDedupe {
	return &memoryDedupe{
		seen:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// mark returns true when eventID has not been seen within the TTL
func (d *memoryDedupe) mark(eventID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock()
	if at, ok := d.seen[eventID]; ok {
		if now.Sub(at) < dedupeTTL {
			return false
		}
		// Expired entry being re-admitted: drop its stale order slot, or a
		// later eviction of that slot would forget the fresh timestamp
		for i, id := range d.order {
			if id == eventID {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}

	d.seen[eventID] = now
	d.order = append(d.order, eventID)

	for len(d.order) > dedupeCapacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}

	return true
}
