package market

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/chainlist/internal/errresponse"
	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

type ctxKey int

const (
	ctxKeyArticle ctxKey = iota
	ctxKeyAccount
)

// AccountCtx resolves the acting party of a mutating call from the
// X-Account header set by the session layer. Request bodies never name
// the seller or buyer, so a caller cannot act as somebody else.
func AccountCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := strings.TrimSpace(r.Header.Get("X-Account"))
		if account == "" {
			if err := render.Render(w, r, errresponse.ErrUnauthorized); err != nil {
				log.Println(err)
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyAccount, model.Address(account))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Account returns the acting party stored by AccountCtx.
func Account(ctx context.Context) model.Address {
	account, _ := ctx.Value(ctxKeyAccount).(model.Address)

	return account
}

// ArticleCtx middleware is used to load an Article from the URL
// parameters passed through as the request. In case the Article could
// not be found, we stop here and return a 404.
//
// Purchase does not go through this middleware: the ledger runs its
// own checks in a fixed order and must be the one to tell an empty
// market apart from an unknown id.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "articleID"), 10, 64)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
				a.Log.Errorw(err.Error())
			}

			return
		}

		article, err := a.Ledger.Get(id)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
				a.Log.Errorw(err.Error())
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyArticle, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly middleware restricts access to callers presenting the
// configured token. An empty token disables the admin surface.
func AdminOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Admin-Token") != token {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Paginate is a stub, but very possible to implement middleware logic
// to handle the request params for handling a paginated request.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// just a stub.. some ideas are to look at URL query params for something like
		// the page number, or the limit, and send a query cursor down the chain
		next.ServeHTTP(w, r)
	})
}
