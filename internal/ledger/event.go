package ledger

import (
	"sync"

	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

type EventType string

const (
	EventListed    EventType = "listed"
	EventPurchased EventType = "purchased"
)

// Event is emitted after every successful mutation. It carries enough
// data for a passive observer to maintain the for-sale set without
// re-reading the registry: the article id, its name and the acting
// party (Seller for listings, Buyer for purchases).
type Event struct {
	Seq       uint64        `json:"seq"`
	Type      EventType     `json:"type"`
	ArticleID uint64        `json:"articleId"`
	Seller    model.Address `json:"seller,omitempty"`
	Buyer     model.Address `json:"buyer,omitempty"`
	Name      string        `json:"name"`
}

type EventCallback func(Event)

// Switch fans committed events out to subscribed listeners. Callbacks
// run synchronously on the mutating goroutine in commit order, so a
// callback must return quickly and must not call mutating ledger
// operations.
type Switch struct {
	mtx       sync.RWMutex
	listeners map[string]EventCallback
}

func NewSwitch() *Switch {
	return &Switch{
		listeners: make(map[string]EventCallback),
	}
}

// Subscribe registers cb for every future event and returns the
// listener id to pass to Unsubscribe.
func (s *Switch) Subscribe(cb EventCallback) string {
	id := uuid.NewString()

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.listeners[id] = cb

	return id
}

func (s *Switch) Unsubscribe(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.listeners, id)
}

func (s *Switch) fire(ev Event) {
	s.mtx.RLock()
	callbacks := make([]EventCallback, 0, len(s.listeners))
	for _, cb := range s.listeners {
		callbacks = append(callbacks, cb)
	}
	s.mtx.RUnlock()

	for _, cb := range callbacks {
		cb(ev)
	}
}
