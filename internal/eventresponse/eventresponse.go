package eventresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/chainlist/internal/ledger"
)

// EventResponse is the payload for one journal event.
type EventResponse struct {
	ledger.Event
}

func NewEventResponse(ev ledger.Event) *EventResponse {
	return &EventResponse{Event: ev}
}

func (rd *EventResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewEventListResponse(events []ledger.Event) []render.Renderer {
	list := []render.Renderer{}
	for _, ev := range events {
		list = append(list, NewEventResponse(ev))
	}

	return list
}
