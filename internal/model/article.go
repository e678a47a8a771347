package model

// Address identifies an account taking part in the marketplace.
// It is opaque to the ledger: the session layer that submits
// operations decides what an address looks like.
type Address string

// NoBuyer marks an article that has not been sold yet.
const NoBuyer = Address("")

// Article data model. Prices are held in the smallest currency unit,
// so an int64 is exact and there is no floating point money anywhere.
type Article struct {
	ID          uint64  `json:"id"`
	Seller      Address `json:"seller"`
	Buyer       Address `json:"buyer,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
}

// Sold reports whether the article has a recorded buyer.
func (a *Article) Sold() bool {
	return a.Buyer != NoBuyer
}
