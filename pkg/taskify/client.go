// Package taskify is a typed client for the Taskify inventory API.
package taskify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client talks to one Taskify API deployment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	debug      bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithDebug logs raw request and response bodies at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// NewClient constructs a client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/v1/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// ListProducts returns one page of products.
func (c *Client) ListProducts(ctx context.Context, p ListProductsParams) (*ProductPage, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	path := "/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	page := &ProductPage{}
	meta, err := c.do(ctx, http.MethodGet, path, nil, &page.Products)
	if err != nil {
		return nil, err
	}
	if meta.Pagination != nil {
		page.Pagination = *meta.Pagination
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var p Product
	if _, err := c.do(ctx, http.MethodGet, "/v1/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListLowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	if _, err := c.do(ctx, http.MethodGet, "/v1/products/low-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStock sets a product's stock quantity.
func (c *Client) UpdateStock(ctx context.Context, id, quantity int) (*Product, error) {
	var p Product
	body := map[string]int{"stockQuantity": quantity}
	if _, err := c.do(ctx, http.MethodPut, "/v1/products/"+strconv.Itoa(id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateSale(ctx context.Context, in *CreateSaleInput) (*Sale, error) {
	var s Sale
	if _, err := c.do(ctx, http.MethodPost, "/v1/sales", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetSale(ctx context.Context, id int) (*Sale, error) {
	var s Sale
	if _, err := c.do(ctx, http.MethodGet, "/v1/sales/"+strconv.Itoa(id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var out []Alert
	if _, err := c.do(ctx, http.MethodGet, "/v1/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reconcile re-checks the caller's alerts against the catalog and returns
// the products currently low on stock.
func (c *Client) Reconcile(ctx context.Context) ([]Product, error) {
	var out []Product
	if _, err := c.do(ctx, http.MethodPost, "/v1/alerts/reconcile", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DismissAlert(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/alerts/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) DismissAllAlerts(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/alerts", nil, nil)
	return err
}

// DismissProductAlerts removes every alert about productID and returns how
// many were removed.
func (c *Client) DismissProductAlerts(ctx context.Context, productID int) (int, error) {
	var res struct {
		Dismissed int `json:"dismissed"`
	}
	if _, err := c.do(ctx, http.MethodDelete, "/v1/alerts/product/"+strconv.Itoa(productID), nil, &res); err != nil {
		return 0, err
	}
	return res.Dismissed, nil
}

// do sends the request and decodes exactly one envelope. result may be nil
// when the caller ignores data.
func (c *Client) do(ctx context.Context, method, path string, body, result any) (*Meta, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		if c.debug {
			log.Debug().Str("path", path).RawJSON("request", payload).Msg("[TASKIFY] Outgoing request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().Str("path", path).Int("status_code", resp.StatusCode).Bytes("response", respBody).Msg("[TASKIFY] Incoming response")
	}

	return decodeEnvelope(resp.StatusCode, respBody, result)
}

func decodeEnvelope(status int, body []byte, result any) (*Meta, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Status: status, Body: body, Err: err}
	}
	if env.Success == nil {
		return nil, &DecodeError{Status: status, Body: body, Err: errors.New("missing success field")}
	}

	if !*env.Success {
		if env.Error == nil {
			return nil, &DecodeError{Status: status, Body: body, Err: errors.New("error envelope without error object")}
		}
		return nil, &APIError{
			Status:    status,
			Code:      env.Error.Code,
			Message:   env.Error.Message,
			RequestID: env.Meta.RequestID,
		}
	}

	if result != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, &DecodeError{Status: status, Body: body, Err: errors.New("missing data")}
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, &DecodeError{Status: status, Body: body, Err: err}
		}
	}
	return &env.Meta, nil
}
