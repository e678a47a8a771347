// Package ledger holds the authoritative marketplace state: the
// article registry, the id counter, the purchase rules and the event
// log. Every mutation is all-or-nothing; a rejected call leaves the
// registry, the counter and the journal exactly as they were.
package ledger

import (
	"sync"

	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

// Transferrer moves value between accounts. The ledger calls it while
// holding its write lock, so the credit and the article mutation
// commit together; a transfer error aborts the purchase the same way
// a failed check does.
type Transferrer interface {
	Transfer(from, to model.Address, amount int64) error
}

// Ledger is the one owner of the article registry. Construct a fresh
// one per test; nothing in this package is a singleton.
type Ledger struct {
	mu       sync.RWMutex
	nextID   uint64
	articles map[uint64]*model.Article
	journal  *Journal
	events   *Switch
	bank     Transferrer
}

func New(journal *Journal, bank Transferrer) *Ledger {
	return &Ledger{
		nextID:   1,
		articles: make(map[uint64]*model.Article),
		journal:  journal,
		events:   NewSwitch(),
		bank:     bank,
	}
}

// Events exposes the live event switch for subscribers.
func (l *Ledger) Events() *Switch {
	return l.events
}

// Replay streams committed events with seq >= from. Observers that
// replay and then follow live events can see the same event twice;
// they are expected to apply events idempotently, keyed by article id.
func (l *Ledger) Replay(from uint64, fn func(Event) error) error {
	return l.journal.Replay(from, fn)
}

// List records a new article for sale and returns its id. The id is
// the counter value before the increment, so ids are 1, 2, 3, ... with
// no gaps. Name and description are stored as given: suppressing empty
// names or free articles is a front-end policy, not a ledger rule.
func (l *Ledger) List(seller model.Address, name, description string, price int64) (uint64, error) {
	if price < 0 {
		return 0, ErrNegativePrice
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The journal write happens first: if the backend cannot commit
	// the event, the registry and the counter stay untouched.
	ev, err := l.journal.append(Event{
		Type:      EventListed,
		ArticleID: l.nextID,
		Seller:    seller,
		Name:      name,
	})
	if err != nil {
		return 0, err
	}

	a := &model.Article{
		ID:          l.nextID,
		Seller:      seller,
		Buyer:       model.NoBuyer,
		Name:        name,
		Description: description,
		Price:       price,
	}
	l.articles[a.ID] = a
	l.nextID++

	l.events.fire(ev)

	return a.ID, nil
}

// Purchase sells article id to buyer for exactly paid. The checks run
// in a fixed order and the first failure aborts the whole call: no
// state change, no transfer, no event. Two purchases racing for the
// same article serialize on the write lock; the second one observes
// the first's buyer and fails ErrAlreadySold.
func (l *Ledger) Purchase(id uint64, buyer model.Address, paid int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.articles) == 0 {
		return ErrEmptyMarket
	}

	a, ok := l.articles[id]
	if !ok {
		return ErrUnknownArticle
	}

	if a.Seller == buyer {
		return ErrSelfPurchase
	}

	if paid != a.Price {
		return ErrPriceMismatch
	}

	if a.Sold() {
		return ErrAlreadySold
	}

	if err := l.bank.Transfer(buyer, a.Seller, paid); err != nil {
		return err
	}

	ev, err := l.journal.append(Event{
		Type:      EventPurchased,
		ArticleID: a.ID,
		Buyer:     buyer,
		Name:      a.Name,
	})
	if err != nil {
		// The credit must not survive an aborted purchase.
		_ = l.bank.Transfer(a.Seller, buyer, paid)

		return err
	}

	a.Buyer = buyer

	l.events.fire(ev)

	return nil
}

// Get returns a copy of the article. The registry itself is never
// handed out, so callers cannot mutate ledger state behind its back.
func (l *Ledger) Get(id uint64) (model.Article, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.articles[id]
	if !ok {
		return model.Article{}, ErrUnknownArticle
	}

	return *a, nil
}

// ForSale returns the ids of unsold articles in ascending order.
func (l *Ledger) ForSale() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]uint64, 0, len(l.articles))

	for id := uint64(1); id < l.nextID; id++ {
		if a := l.articles[id]; a != nil && !a.Sold() {
			ids = append(ids, id)
		}
	}

	return ids
}

// Articles returns a copy of every article ever listed, sold ones
// included, in id order. Nothing is ever deleted from the registry.
func (l *Ledger) Articles() []model.Article {
	l.mu.RLock()
	defer l.mu.RUnlock()

	articles := make([]model.Article, 0, len(l.articles))

	for id := uint64(1); id < l.nextID; id++ {
		if a := l.articles[id]; a != nil {
			articles = append(articles, *a)
		}
	}

	return articles
}

// Count is the number of articles ever listed, sold ones included.
func (l *Ledger) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.nextID - 1
}
