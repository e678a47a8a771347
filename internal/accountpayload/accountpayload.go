package accountpayload

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

// AccountResponse reports an account balance on the admin surface.
type AccountResponse struct {
	Address model.Address `json:"address"`
	Balance int64         `json:"balance"`
}

func NewAccountResponse(addr model.Address, balance int64) *AccountResponse {
	return &AccountResponse{Address: addr, Balance: balance}
}

func (rd *AccountResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// NewAccountListResponse renders balances in address order so the
// output is stable.
func NewAccountListResponse(balances map[model.Address]int64) []render.Renderer {
	addrs := make([]model.Address, 0, len(balances))
	for addr := range balances {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	list := []render.Renderer{}
	for _, addr := range addrs {
		list = append(list, NewAccountResponse(addr, balances[addr]))
	}

	return list
}

// DepositRequest is the faucet payload.
type DepositRequest struct {
	Amount int64 `json:"amount"`
}

func (d *DepositRequest) Bind(r *http.Request) error {
	if d.Amount <= 0 {
		return errors.New("deposit amount must be positive")
	}

	return nil
}
