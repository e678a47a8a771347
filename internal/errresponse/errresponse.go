package errresponse

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/chainlist/internal/bank"
	"github.com/SergeyParamoshkin/chainlist/internal/ledger"
)

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	Code       string `json:"code,omitempty"`  // stable rejection code
	ErrorText  string `json:"error,omitempty"` // application-level error message
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal error.",
		ErrorText:      err.Error(),
	}
}

var (
	ErrNotFound     = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
	ErrUnauthorized = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, StatusText: "Missing account."}
)

// ErrRejection maps a ledger rejection onto its stable code and an
// HTTP status. Rejections are expected outcomes, not faults; the
// reason string passes through untouched so clients can compare it.
func ErrRejection(err error) render.Renderer {
	status := http.StatusConflict

	switch {
	case errors.Is(err, ledger.ErrUnknownArticle):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrNegativePrice):
		status = http.StatusBadRequest
	case errors.Is(err, bank.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     "Rejected.",
		Code:           string(ledger.CodeFor(err)),
		ErrorText:      err.Error(),
	}
}
