package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
)

const clientDefaultTimeout = 15 * time.Second

// Error is a non-2xx reply from the server.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code >= 0 {
		return fmt.Sprintf("rpc: %s (code %d, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("rpc: %s (status %d)", e.Message, e.Status)
}

// Client talks to a bondd HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient uses a client with
// a fifteen second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientDefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = raw
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error.Message == "" {
			return &Error{Status: resp.StatusCode, Code: -1, Message: http.StatusText(resp.StatusCode)}
		}
		return &Error{Status: resp.StatusCode, Code: failure.Error.Code, Message: failure.Error.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Submit posts a signed transaction.
func (c *Client) Submit(ctx context.Context, tx *types.Transaction) (*SubmitResult, error) {
	var out SubmitResult
	if err := c.do(ctx, http.MethodPost, "/tx", NewSubmitRequest(tx), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Head fetches the commit new transactions should anchor to.
func (c *Client) Head(ctx context.Context) (*HeadView, error) {
	var out HeadView
	if err := c.do(ctx, http.MethodGet, "/head", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Config(ctx context.Context) (*ConfigView, error) {
	var out ConfigView
	if err := c.do(ctx, http.MethodGet, "/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Owner(ctx context.Context, wallet crypto.Address) (*OwnerView, error) {
	var out OwnerView
	if err := c.do(ctx, http.MethodGet, "/owners/"+wallet.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Position(ctx context.Context, wallet crypto.Address, index uint8) (*PositionView, error) {
	var out PositionView
	path := fmt.Sprintf("/owners/%s/bonds/%d", wallet, index)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Preview(ctx context.Context, wallet crypto.Address, index uint8) (*bonds.ClaimPreview, error) {
	var out bonds.ClaimPreview
	path := fmt.Sprintf("/owners/%s/bonds/%d/preview", wallet, index)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Balance(ctx context.Context, addr crypto.Address) (*BalanceView, error) {
	var out BalanceView
	if err := c.do(ctx, http.MethodGet, "/balances/"+addr.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
