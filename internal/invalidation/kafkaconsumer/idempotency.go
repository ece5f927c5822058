package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// seqDedupe remembers the highest event sequence seen per layer so replays
// and reordered deliveries do not purge a layer twice.
type seqDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newSeqDedupe(size int) *seqDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &seqDedupe{lru: c}
}

// shouldApply reports whether seq advances past the last recorded value for
// the layer. A zero seq always applies; producers that do not number their
// events opt out of deduplication.
func (d *seqDedupe) shouldApply(layer string, seq uint64) bool {
	if seq == 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(layer)
	return !ok || seq > last
}

// record stores seq as the latest applied value for the layer. Called only
// after the purge succeeds so a failed message is still retried.
func (d *seqDedupe) record(layer string, seq uint64) {
	if seq == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(layer); ok && seq <= last {
		return
	}
	d.lru.Add(layer, seq)
}
