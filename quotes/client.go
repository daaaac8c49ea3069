package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// ErrUnavailable covers every quote failure mode: network errors,
// timeouts, non-200 responses and undecodable payloads.
var ErrUnavailable = errors.New("quote unavailable")

// Quote is a point-in-time price and company name for a symbol.
type Quote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Client fetches quotes from an IEX-style price API. No retries and no
// caching; a single bounded request per lookup.
type Client struct {
	http  *resty.Client
	token string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second),
		token: token,
	}
}

// Lookup returns the current quote for symbol.
func (c *Client) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"token":  c.token,
			"filter": "symbol,companyName,latestPrice",
		}).
		SetResult(&quote).
		Get("/stable/stock/{symbol}/quote")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %q", ErrUnavailable, resp.StatusCode(), symbol)
	}
	if quote.Symbol == "" {
		return nil, fmt.Errorf("%w: empty quote for %q", ErrUnavailable, symbol)
	}

	return &quote, nil
}
