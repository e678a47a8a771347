// watcher_test.go
// +build !integration

package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatcherRebuildsForSaleSet(t *testing.T) {
	w := NewWatcher()

	w.Apply(Event{Seq: 1, Type: "listed", ArticleID: 1, Seller: "s", Name: "article 1"})
	w.Apply(Event{Seq: 2, Type: "listed", ArticleID: 2, Seller: "s", Name: "article 2"})
	w.Apply(Event{Seq: 3, Type: "purchased", ArticleID: 1, Buyer: "b", Name: "article 1"})

	require.Equal(t, []uint64{2}, w.ForSale())

	name, ok := w.Name(2)
	require.True(t, ok)
	require.Equal(t, "article 2", name)

	_, ok = w.Name(1)
	require.False(t, ok)
}

// Overlapping replay + live delivery hands the watcher the same events
// twice; a stale "listed" must not resurrect a sold article.
func TestWatcherDropsDuplicateDelivery(t *testing.T) {
	w := NewWatcher()

	listed := Event{Seq: 1, Type: "listed", ArticleID: 1, Seller: "s", Name: "article 1"}
	purchased := Event{Seq: 2, Type: "purchased", ArticleID: 1, Buyer: "b", Name: "article 1"}

	w.Apply(listed)
	w.Apply(purchased)

	// full replay arrives after the live events
	w.Apply(listed)
	w.Apply(purchased)

	require.Empty(t, w.ForSale())
	require.Equal(t, uint64(2), w.LastSeq())
}
