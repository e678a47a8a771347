package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

// ArticleResponse is the response payload for the Article data model.
//
// In the ArticleResponse object, first a Render() is called on itself,
// then the next field, and so on, all the way down the tree.
// Render is called in top-down order, like a http handler middleware chain.
type ArticleResponse struct {
	model.Article

	// ForSale is computed for the rendering layer, which toggles the
	// buy button on it.
	ForSale bool `json:"forSale"`
}

func NewArticleResponse(article model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	// Pre-processing before a response is marshalled and sent across the wire
	rd.ForSale = !rd.Sold()

	return nil
}

func NewArticleListResponse(articles []model.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, article := range articles {
		list = append(list, NewArticleResponse(article))
	}

	return list
}

// CountResponse reports how many articles were ever listed, sold ones
// included.
type CountResponse struct {
	Count uint64 `json:"count"`
}

func NewCountResponse(count uint64) *CountResponse {
	return &CountResponse{Count: count}
}

func (rd *CountResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
