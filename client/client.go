package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
)

// Client talks to a chainlist service. Account is the acting party
// sent with every mutating call; it plays the role of the connected
// wallet in the original listing page.
type Client struct {
	http.Client
	Addr    string
	Account string
}

type Article struct {
	ID          uint64 `json:"id"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ForSale     bool   `json:"forSale"`
}

type Event struct {
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	ArticleID uint64 `json:"articleId"`
	Seller    string `json:"seller,omitempty"`
	Buyer     string `json:"buyer,omitempty"`
	Name      string `json:"name"`
}

// RejectionError is a ledger rejection surfaced over HTTP. Code is
// stable and machine-comparable; Reason is the original reason string.
type RejectionError struct {
	Code   string
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest("GET", c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// SellArticle lists an article and returns the stored record.
func (c *Client) SellArticle(name, description string, price int64) (Article, error) {
	var article Article

	in := map[string]interface{}{
		"name":        name,
		"description": description,
		"price":       price,
	}

	err := c.call("POST", "/articles", in, &article)

	return article, err
}

// BuyArticle purchases article id with the given value attached.
func (c *Client) BuyArticle(id uint64, value int64) (Article, error) {
	var article Article

	in := map[string]interface{}{"value": value}

	err := c.call("POST", "/articles/"+strconv.FormatUint(id, 10)+"/buy", in, &article)

	return article, err
}

func (c *Client) GetArticle(id uint64) (Article, error) {
	var article Article

	err := c.call("GET", "/articles/"+strconv.FormatUint(id, 10), nil, &article)

	return article, err
}

// ArticlesForSale returns the unsold articles in ascending id order.
func (c *Client) ArticlesForSale() ([]Article, error) {
	articles := []Article{}

	err := c.call("GET", "/articles", nil, &articles)

	return articles, err
}

// Count reports how many articles were ever listed, sold ones included.
func (c *Client) Count() (uint64, error) {
	var out struct {
		Count uint64 `json:"count"`
	}

	err := c.call("GET", "/articles/count", nil, &out)

	return out.Count, err
}

// Events replays the journal from seq (0 = genesis).
func (c *Client) Events(from uint64) ([]Event, error) {
	events := []Event{}

	err := c.call("GET", "/events?from="+strconv.FormatUint(from, 10), nil, &events)

	return events, err
}

func (c *Client) call(method, path string, in, out interface{}) error {
	var body io.Reader

	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.Addr+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Account != "" {
		req.Header.Set("X-Account", c.Account)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var rejection struct {
			Status string `json:"status"`
			Code   string `json:"code"`
			Error  string `json:"error"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&rejection); err == nil && rejection.Code != "" {
			return &RejectionError{Code: rejection.Code, Reason: rejection.Error}
		}

		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
