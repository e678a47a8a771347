package ledger_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/SergeyParamoshkin/chainlist/internal/bank"
	"github.com/SergeyParamoshkin/chainlist/internal/ledger"
	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

const (
	seller = model.Address("0xseller")
	buyer  = model.Address("0xbuyer")
	other  = model.Address("0xother")
)

func newTestLedger(t *testing.T) (*ledger.Ledger, *bank.Bank) {
	t.Helper()

	journal, err := ledger.NewJournal(dbm.NewMemDB())
	require.NoError(t, err)

	b := bank.New()
	b.Deposit(buyer, 1000)
	b.Deposit(other, 1000)

	return ledger.New(journal, b), b
}

// snapshot captures everything a rejected call must leave untouched:
// the registry, the id counter (observable through Count) and the
// event journal.
type snapshot struct {
	Count    uint64
	Articles []model.Article
	ForSale  []uint64
	Events   []ledger.Event
}

func capture(t *testing.T, l *ledger.Ledger) snapshot {
	t.Helper()

	s := snapshot{
		Count:    l.Count(),
		Articles: l.Articles(),
		ForSale:  l.ForSale(),
	}

	require.NoError(t, l.Replay(0, func(ev ledger.Event) error {
		s.Events = append(s.Events, ev)

		return nil
	}))

	return s
}

func requireUnchanged(t *testing.T, l *ledger.Ledger, before snapshot) {
	t.Helper()

	if diff := cmp.Diff(before, capture(t, l)); diff != "" {
		t.Fatalf("state changed after a rejected call:\n%s", diff)
	}
}

func TestListAssignsSequentialIDs(t *testing.T) {
	l, _ := newTestLedger(t)

	for want := uint64(1); want <= 5; want++ {
		id, err := l.List(seller, "article", "desc", 10)
		require.NoError(t, err)
		require.Equal(t, want, id)
	}

	require.Equal(t, uint64(5), l.Count())
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, l.ForSale())
}

func TestListStoresArticleAsGiven(t *testing.T) {
	l, _ := newTestLedger(t)

	id, err := l.List(seller, "article 1", "Description for article 1", 10)
	require.NoError(t, err)

	a, err := l.Get(id)
	require.NoError(t, err)

	require.Equal(t, model.Article{
		ID:          1,
		Seller:      seller,
		Buyer:       model.NoBuyer,
		Name:        "article 1",
		Description: "Description for article 1",
		Price:       10,
	}, a)
}

// The ledger does not second-guess listings: empty names and zero
// prices are a front-end policy, and a zero-price article is
// purchasable for zero by anyone but its seller.
func TestListAcceptsDegenerateListings(t *testing.T) {
	l, _ := newTestLedger(t)

	id, err := l.List(seller, "", "", 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	require.NoError(t, l.Purchase(id, buyer, 0))

	a, err := l.Get(id)
	require.NoError(t, err)
	require.Equal(t, buyer, a.Buyer)
}

func TestListRejectsNegativePrice(t *testing.T) {
	l, _ := newTestLedger(t)
	before := capture(t, l)

	_, err := l.List(seller, "article", "desc", -1)
	require.ErrorIs(t, err, ledger.ErrNegativePrice)

	requireUnchanged(t, l, before)
}

func TestBuyOnEmptyMarket(t *testing.T) {
	l, _ := newTestLedger(t)
	before := capture(t, l)

	err := l.Purchase(1, buyer, 10)
	require.ErrorIs(t, err, ledger.ErrEmptyMarket)
	assert.EqualError(t, err, "There should be at least one article")

	require.Equal(t, uint64(0), l.Count())
	requireUnchanged(t, l, before)
}

func TestBuyUnknownArticle(t *testing.T) {
	l, _ := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)
	before := capture(t, l)

	err = l.Purchase(2, buyer, 10)
	require.ErrorIs(t, err, ledger.ErrUnknownArticle)
	assert.EqualError(t, err, "Article with this id does not exist")

	a, err := l.Get(id)
	require.NoError(t, err)
	require.Equal(t, model.NoBuyer, a.Buyer)
	requireUnchanged(t, l, before)
}

func TestBuyOwnArticle(t *testing.T) {
	l, b := newTestLedger(t)
	b.Deposit(seller, 1000)

	id, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)
	before := capture(t, l)

	err = l.Purchase(id, seller, 10)
	require.ErrorIs(t, err, ledger.ErrSelfPurchase)
	assert.EqualError(t, err, "Seller cannot buy his own article")

	// the check fires regardless of the amount offered
	err = l.Purchase(id, seller, 999)
	require.ErrorIs(t, err, ledger.ErrSelfPurchase)

	requireUnchanged(t, l, before)
}

func TestBuyWrongValue(t *testing.T) {
	l, _ := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)
	before := capture(t, l)

	for _, paid := range []int64{0, 9, 11, 20} {
		err := l.Purchase(id, buyer, paid)
		require.ErrorIs(t, err, ledger.ErrPriceMismatch, "paid %d", paid)
		assert.EqualError(t, err, "Value provided does not match price of article")
	}

	requireUnchanged(t, l, before)
}

func TestBuyAlreadySold(t *testing.T) {
	l, b := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)

	require.NoError(t, l.Purchase(id, buyer, 10))
	require.Equal(t, int64(990), b.Balance(buyer))
	require.Equal(t, int64(10), b.Balance(seller))

	after := capture(t, l)

	err = l.Purchase(id, other, 10)
	require.ErrorIs(t, err, ledger.ErrAlreadySold)
	assert.EqualError(t, err, "Article was already sold")

	a, err := l.Get(id)
	require.NoError(t, err)
	require.Equal(t, buyer, a.Buyer)
	require.Empty(t, l.ForSale())
	requireUnchanged(t, l, after)
}

func TestBuyInsufficientFunds(t *testing.T) {
	l, b := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 2000)
	require.NoError(t, err)
	before := capture(t, l)

	err = l.Purchase(id, buyer, 2000)
	require.ErrorIs(t, err, bank.ErrInsufficientFunds)

	// a transfer failure behaves exactly like a failed check
	require.Equal(t, int64(1000), b.Balance(buyer))
	require.Equal(t, int64(0), b.Balance(seller))
	requireUnchanged(t, l, before)
}

// Exercises the full check order of the original contract against one
// registry: every rejection leaves the state bit-identical.
func TestRejectionsLeaveStateUntouched(t *testing.T) {
	l, _ := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)
	before := capture(t, l)

	rejections := []struct {
		name string
		call func() error
		want error
	}{
		{"unknown id", func() error { return l.Purchase(99, buyer, 10) }, ledger.ErrUnknownArticle},
		{"self purchase", func() error { return l.Purchase(id, seller, 10) }, ledger.ErrSelfPurchase},
		{"wrong value", func() error { return l.Purchase(id, buyer, 11) }, ledger.ErrPriceMismatch},
		{"negative price listing", func() error {
			_, err := l.List(seller, "x", "y", -5)
			return err
		}, ledger.ErrNegativePrice},
	}

	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.call(), tc.want)
			requireUnchanged(t, l, before)
		})
	}

	// the id counter did not move either: the next listing gets id 2
	next, err := l.List(seller, "article 2", "desc", 10)
	require.NoError(t, err)
	require.Equal(t, uint64(2), next)
}

func TestForSaleExcludesSoldArticles(t *testing.T) {
	l, _ := newTestLedger(t)

	for i := 0; i < 3; i++ {
		_, err := l.List(seller, "article", "desc", 10)
		require.NoError(t, err)
	}

	require.NoError(t, l.Purchase(2, buyer, 10))

	require.Equal(t, []uint64{1, 3}, l.ForSale())
	require.Equal(t, uint64(3), l.Count())
	require.Len(t, l.Articles(), 3)
}

func TestEventsFollowMutationOrder(t *testing.T) {
	l, _ := newTestLedger(t)

	var live []ledger.Event

	sub := l.Events().Subscribe(func(ev ledger.Event) {
		live = append(live, ev)
	})

	_, err := l.List(seller, "article 1", "desc", 10)
	require.NoError(t, err)
	_, err = l.List(seller, "article 2", "desc", 20)
	require.NoError(t, err)
	require.NoError(t, l.Purchase(1, buyer, 10))

	// a rejected call emits nothing
	require.Error(t, l.Purchase(1, other, 10))

	want := []ledger.Event{
		{Seq: 1, Type: ledger.EventListed, ArticleID: 1, Seller: seller, Name: "article 1"},
		{Seq: 2, Type: ledger.EventListed, ArticleID: 2, Seller: seller, Name: "article 2"},
		{Seq: 3, Type: ledger.EventPurchased, ArticleID: 1, Buyer: buyer, Name: "article 1"},
	}
	require.Equal(t, want, live)

	var replayed []ledger.Event
	require.NoError(t, l.Replay(0, func(ev ledger.Event) error {
		replayed = append(replayed, ev)

		return nil
	}))
	require.Equal(t, want, replayed)

	// replay from an arbitrary historical point
	var tail []ledger.Event
	require.NoError(t, l.Replay(3, func(ev ledger.Event) error {
		tail = append(tail, ev)

		return nil
	}))
	require.Equal(t, want[2:], tail)

	// unsubscribed listeners stop receiving
	l.Events().Unsubscribe(sub)
	_, err = l.List(seller, "article 3", "desc", 30)
	require.NoError(t, err)
	require.Len(t, live, 3)
}

func TestPurchaseMovesExactValue(t *testing.T) {
	l, b := newTestLedger(t)

	id, err := l.List(seller, "article 1", "desc", 250)
	require.NoError(t, err)

	require.NoError(t, l.Purchase(id, buyer, 250))

	require.Equal(t, int64(750), b.Balance(buyer))
	require.Equal(t, int64(250), b.Balance(seller))
}
