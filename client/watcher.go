package client

import (
	"sort"
	"sync"
)

// Watcher maintains the for-sale view from the event stream alone, the
// way the original listing page does. Replayed history and live events
// can overlap, so every event is applied idempotently: the view keeps
// one entry per article id and duplicate deliveries are dropped by
// sequence number.
type Watcher struct {
	mu      sync.Mutex
	forSale map[uint64]string
	lastSeq uint64
}

func NewWatcher() *Watcher {
	return &Watcher{
		forSale: make(map[uint64]string),
	}
}

// Apply folds one event into the view. Events at or below the highest
// sequence seen are already folded in and are dropped, so applying a
// replayed event after its live delivery (or vice versa) is a no-op.
func (w *Watcher) Apply(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ev.Seq <= w.lastSeq {
		return
	}
	w.lastSeq = ev.Seq

	switch ev.Type {
	case "listed":
		w.forSale[ev.ArticleID] = ev.Name
	case "purchased":
		delete(w.forSale, ev.ArticleID)
	}
}

// ForSale returns the reconstructed unsold article ids in ascending
// order.
func (w *Watcher) ForSale() []uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]uint64, 0, len(w.forSale))
	for id := range w.forSale {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Name returns the listed name for an article still on sale.
func (w *Watcher) Name(id uint64) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name, ok := w.forSale[id]

	return name, ok
}

// LastSeq is the highest sequence folded in so far; resume a replay
// from LastSeq()+1, overlap included.
func (w *Watcher) LastSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lastSeq
}

// Sync replays the service journal from genesis into the watcher.
func (w *Watcher) Sync(c *Client) error {
	events, err := c.Events(0)
	if err != nil {
		return err
	}

	for _, ev := range events {
		w.Apply(ev)
	}

	return nil
}
