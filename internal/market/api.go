// Package market serves the marketplace ledger over HTTP. It is the
// boundary the rendering layer talks to: queries for the for-sale
// list, mutations for selling and buying, and the replayable event
// feed it live-updates from.
package market

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/chainlist/internal/accountpayload"
	"github.com/SergeyParamoshkin/chainlist/internal/articlerequest"
	"github.com/SergeyParamoshkin/chainlist/internal/articleresponse"
	"github.com/SergeyParamoshkin/chainlist/internal/bank"
	"github.com/SergeyParamoshkin/chainlist/internal/errresponse"
	"github.com/SergeyParamoshkin/chainlist/internal/eventresponse"
	"github.com/SergeyParamoshkin/chainlist/internal/ledger"
	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

// Metrics are the bound counters published on the diag endpoint.
type Metrics struct {
	Listings   metric.BoundInt64Counter
	Purchases  metric.BoundInt64Counter
	Rejections metric.BoundInt64Counter
}

// API carries the handlers' dependencies. The ledger handle is
// explicit so tests run each suite against a fresh registry.
type API struct {
	Ledger  *ledger.Ledger
	Bank    *bank.Bank
	Log     *zap.SugaredLogger
	Metrics *Metrics
}

// ArticlesRouter assembles the RESTy routes for the "articles" resource.
func ArticlesRouter(a *API) chi.Router {
	r := chi.NewRouter()

	r.With(Paginate).Get("/", a.ListForSale)
	r.With(AccountCtx).Post("/", a.SellArticle)
	r.Get("/count", a.CountArticles)

	r.Route("/{articleID}", func(r chi.Router) {
		r.With(a.ArticleCtx).Get("/", a.GetArticle)
		r.With(AccountCtx).Post("/buy", a.BuyArticle)
	})

	return r
}

// AdminRouter is a completely separate router for administrator routes.
func (a *API) AdminRouter(token string) chi.Router {
	r := chi.NewRouter()
	r.Use(AdminOnly(token))
	r.Get("/accounts", a.ListAccounts)
	r.Post("/accounts/{address}/deposit", a.Deposit)

	return r
}

// SellArticle records a new listing on the ledger and returns the
// stored article as an acknowledgement.
func (a *API) SellArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.SellArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	seller := Account(r.Context())

	id, err := a.Ledger.List(seller, data.Name, data.Description, data.Price)
	if err != nil {
		a.reject(w, r, err)

		return
	}

	if a.Metrics != nil {
		a.Metrics.Listings.Add(r.Context(), 1)
	}

	article, err := a.Ledger.Get(id)
	if err != nil {
		if err := render.Render(w, r, errresponse.ErrInternal(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	render.Status(r, http.StatusCreated)

	if err := render.Render(w, r, articleresponse.NewArticleResponse(article)); err != nil {
		a.Log.Errorw(err.Error())
	}
}

// BuyArticle purchases the article for the acting party. The attached
// value must match the listed price exactly; everything else is a
// rejection with a stable code and no state change.
func (a *API) BuyArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	data := &articlerequest.BuyArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	buyer := Account(r.Context())

	if err := a.Ledger.Purchase(id, buyer, *data.Value); err != nil {
		a.reject(w, r, err)

		return
	}

	if a.Metrics != nil {
		a.Metrics.Purchases.Add(r.Context(), 1)
	}

	article, err := a.Ledger.Get(id)
	if err != nil {
		if err := render.Render(w, r, errresponse.ErrInternal(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(article)); err != nil {
		a.Log.Errorw(err.Error())
	}
}

// GetArticle returns the specific Article loaded by ArticleCtx.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := r.Context().Value(ctxKeyArticle).(model.Article)
	if !ok {
		if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(article)); err != nil {
		a.Log.Errorw(err.Error())
	}
}

// ListForSale returns the unsold articles in ascending id order.
func (a *API) ListForSale(w http.ResponseWriter, r *http.Request) {
	articles := make([]model.Article, 0)

	for _, id := range a.Ledger.ForSale() {
		article, err := a.Ledger.Get(id)
		if err != nil {
			continue
		}

		articles = append(articles, article)
	}

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(articles)); err != nil {
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			a.Log.Errorw(err.Error())
		}
	}
}

// CountArticles reports how many articles were ever listed.
func (a *API) CountArticles(w http.ResponseWriter, r *http.Request) {
	if err := render.Render(w, r, articleresponse.NewCountResponse(a.Ledger.Count())); err != nil {
		a.Log.Errorw(err.Error())
	}
}

// ListEvents replays the journal from the seq given in ?from (genesis
// when absent). Consumers deduplicate by article id, so serving a
// replay that overlaps their live subscription is fine.
func (a *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	var from uint64

	if s := r.URL.Query().Get("from"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
				a.Log.Errorw(err.Error())
			}

			return
		}

		from = v
	}

	events := []ledger.Event{}

	err := a.Ledger.Replay(from, func(ev ledger.Event) error {
		events = append(events, ev)

		return nil
	})
	if err != nil {
		if err := render.Render(w, r, errresponse.ErrInternal(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	if err := render.RenderList(w, r, eventresponse.NewEventListResponse(events)); err != nil {
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			a.Log.Errorw(err.Error())
		}
	}
}

// ListAccounts reports every known balance.
func (a *API) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if err := render.RenderList(w, r, accountpayload.NewAccountListResponse(a.Bank.Balances())); err != nil {
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			a.Log.Errorw(err.Error())
		}
	}
}

// Deposit credits the faucet amount to the account named in the URL.
func (a *API) Deposit(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(chi.URLParam(r, "address"))

	data := &accountpayload.DepositRequest{}
	if err := render.Bind(r, data); err != nil {
		if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
			a.Log.Errorw(err.Error())
		}

		return
	}

	a.Bank.Deposit(addr, data.Amount)

	if err := render.Render(w, r, accountpayload.NewAccountResponse(addr, a.Bank.Balance(addr))); err != nil {
		a.Log.Errorw(err.Error())
	}
}

func (a *API) reject(w http.ResponseWriter, r *http.Request, err error) {
	if a.Metrics != nil {
		a.Metrics.Rejections.Add(r.Context(), 1)
	}

	a.Log.Infow("rejected", "code", ledger.CodeFor(err), "reason", err.Error())

	if err := render.Render(w, r, errresponse.ErrRejection(err)); err != nil {
		a.Log.Errorw(err.Error())
	}
}
