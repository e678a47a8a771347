package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	dbm "github.com/tendermint/tm-db"
)

// Journal is the append-only event log. Keys are big-endian sequence
// numbers, so the backend iterates in commit order and a replay from
// an arbitrary historical point is a single range scan.
type Journal struct {
	db   dbm.DB
	next uint64
}

// NewJournal opens a journal over db, resuming the sequence counter
// after the last persisted event.
func NewJournal(db dbm.DB) (*Journal, error) {
	j := &Journal{db: db, next: 1}

	it, err := db.ReverseIterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	defer it.Close()

	if it.Valid() {
		j.next = binary.BigEndian.Uint64(it.Key()) + 1
	}

	return j, nil
}

// append assigns the next sequence number and persists the event.
// Called with the ledger write lock held, which is what makes the
// journal order the same total order as the mutations.
func (j *Journal) append(ev Event) (Event, error) {
	ev.Seq = j.next

	raw, err := json.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("journal append: %w", err)
	}

	if err := j.db.SetSync(seqKey(ev.Seq), raw); err != nil {
		return Event{}, fmt.Errorf("journal append: %w", err)
	}

	j.next++

	return ev, nil
}

// Replay calls fn for every stored event with seq >= from, in order.
// from == 0 replays from genesis.
func (j *Journal) Replay(from uint64, fn func(Event) error) error {
	it, err := j.db.Iterator(seqKey(from), nil)
	if err != nil {
		return fmt.Errorf("journal replay: %w", err)
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var ev Event
		if err := json.Unmarshal(it.Value(), &ev); err != nil {
			return fmt.Errorf("journal replay: %w", err)
		}

		if err := fn(ev); err != nil {
			return err
		}
	}

	return it.Error()
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)

	return k
}
