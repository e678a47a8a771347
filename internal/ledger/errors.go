package ledger

import "errors"

// Rejection reasons for the purchase checks, in the order they are
// evaluated. The strings are part of the contract: clients compare
// them (or the codes below) to tell rejections apart, so they must
// never change.
var (
	ErrEmptyMarket    = errors.New("There should be at least one article")
	ErrUnknownArticle = errors.New("Article with this id does not exist")
	ErrSelfPurchase   = errors.New("Seller cannot buy his own article")
	ErrPriceMismatch  = errors.New("Value provided does not match price of article")
	ErrAlreadySold    = errors.New("Article was already sold")

	// ErrNegativePrice guards the only range check on listings: an
	// amount must be representable as non-negative money.
	ErrNegativePrice = errors.New("Price must not be negative")
)

// Code is a stable machine-comparable rejection code.
type Code string

const (
	CodeNone           Code = ""
	CodeEmptyMarket    Code = "EMPTY_MARKET"
	CodeUnknownArticle Code = "UNKNOWN_ARTICLE"
	CodeSelfPurchase   Code = "SELF_PURCHASE"
	CodePriceMismatch  Code = "PRICE_MISMATCH"
	CodeAlreadySold    Code = "ALREADY_SOLD"
	CodeNegativePrice  Code = "NEGATIVE_PRICE"
	CodeTransferFailed Code = "TRANSFER_FAILED"
)

// CodeFor maps a rejection to its code. Any error the ledger returns
// that is not one of its own checks came from the transfer backend,
// which aborts the operation exactly like a failed check does.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrEmptyMarket):
		return CodeEmptyMarket
	case errors.Is(err, ErrUnknownArticle):
		return CodeUnknownArticle
	case errors.Is(err, ErrSelfPurchase):
		return CodeSelfPurchase
	case errors.Is(err, ErrPriceMismatch):
		return CodePriceMismatch
	case errors.Is(err, ErrAlreadySold):
		return CodeAlreadySold
	case errors.Is(err, ErrNegativePrice):
		return CodeNegativePrice
	default:
		return CodeTransferFailed
	}
}
