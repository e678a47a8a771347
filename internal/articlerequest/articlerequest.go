package articlerequest

import (
	"errors"
	"net/http"
)

//--
// Request payloads for the REST api.
//
// The payloads deliberately carry no seller or buyer field: the acting
// party comes from the submission context (the X-Account header), so a
// caller cannot list or buy on behalf of someone else.
//--

// SellArticleRequest is the request payload for listing an article.
type SellArticleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// Bind on SellArticleRequest runs after the unmarshalling is complete.
// The ledger accepts empty names and zero prices, so there is nothing
// to post-process here.
func (a *SellArticleRequest) Bind(r *http.Request) error {
	return nil
}

// BuyArticleRequest carries the value attached to a purchase.
type BuyArticleRequest struct {
	Value *int64 `json:"value"`
}

func (a *BuyArticleRequest) Bind(r *http.Request) error {
	// A missing value is a malformed request, not a price mismatch.
	if a.Value == nil {
		return errors.New("missing required value field")
	}

	return nil
}
