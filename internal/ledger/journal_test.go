package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"
)

func TestJournalAppendAssignsSequence(t *testing.T) {
	j, err := NewJournal(dbm.NewMemDB())
	require.NoError(t, err)

	ev1, err := j.append(Event{Type: EventListed, ArticleID: 1, Name: "a"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), ev1.Seq)

	ev2, err := j.append(Event{Type: EventPurchased, ArticleID: 1, Name: "a"})
	require.NoError(t, err)
	require.Equal(t, uint64(2), ev2.Seq)
}

func TestJournalReplayFromOffset(t *testing.T) {
	j, err := NewJournal(dbm.NewMemDB())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := j.append(Event{Type: EventListed, ArticleID: uint64(i + 1), Name: "a"})
		require.NoError(t, err)
	}

	var seqs []uint64

	require.NoError(t, j.Replay(3, func(ev Event) error {
		seqs = append(seqs, ev.Seq)

		return nil
	}))

	require.Equal(t, []uint64{3, 4, 5}, seqs)
}

// Reopening a journal over the same backend resumes the sequence
// counter instead of reissuing used numbers.
func TestJournalResumesAfterReopen(t *testing.T) {
	db := dbm.NewMemDB()

	j, err := NewJournal(db)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := j.append(Event{Type: EventListed, ArticleID: uint64(i + 1), Name: "a"})
		require.NoError(t, err)
	}

	reopened, err := NewJournal(db)
	require.NoError(t, err)

	ev, err := reopened.append(Event{Type: EventListed, ArticleID: 4, Name: "b"})
	require.NoError(t, err)
	require.Equal(t, uint64(4), ev.Seq)
}

func TestJournalRoundTripsEventFields(t *testing.T) {
	j, err := NewJournal(dbm.NewMemDB())
	require.NoError(t, err)

	in := Event{
		Type:      EventPurchased,
		ArticleID: 7,
		Buyer:     "0xbuyer",
		Name:      "article 7",
	}

	appended, err := j.append(in)
	require.NoError(t, err)

	var out []Event
	require.NoError(t, j.Replay(0, func(ev Event) error {
		out = append(out, ev)

		return nil
	}))

	require.Equal(t, []Event{appended}, out)
}
