package foodapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryAPI defines the remote operations the inventory gateway needs.
// This interface is implemented by *Client and can be faked in tests.
type InventoryAPI interface {
	ListInventory(ctx context.Context) ([]Item, error)
	AddItem(ctx context.Context, product Product) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	UpdateExpiry(ctx context.Context, id, expiryDate string) (*Item, error)
}

// Ensure Client implements InventoryAPI at compile time.
var _ InventoryAPI = (*Client)(nil)

// Client talks to the food inventory HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultAPIURL    = "http://localhost:5000/api/food"
	defaultUserAgent = "larder/0.1"
	requestTimeout   = 5 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListInventory retrieves the full inventory snapshot.
func (c *Client) ListInventory(ctx context.Context) ([]Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Item
	if err := c.do(ctx, http.MethodGet, "inventory", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddItem creates an inventory record, or increments the count of an
// identical one on the server side.
func (c *Client) AddItem(ctx context.Context, product Product) (*Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Item
	if err := c.do(ctx, http.MethodPost, "add", product, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteItem removes a single inventory record.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("item id required")
	}
	return c.doURL(ctx, http.MethodDelete, itemPath("delete", id), nil, nil)
}

// DeleteAll removes every inventory record.
func (c *Client) DeleteAll(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodDelete, "delete", nil, nil)
}

// UpdateExpiry patches the expiry date of one record.
func (c *Client) UpdateExpiry(ctx context.Context, id, expiryDate string) (*Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("item id required")
	}
	var payload Item
	if err := c.doURL(ctx, http.MethodPatch, itemPath("update", id), expiryPatch{ExpiryDate: expiryDate}, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		// Acknowledged without a record.
		return nil, nil
	}
	return &payload, nil
}

// Search queries the product catalog.
func (c *Client) Search(ctx context.Context, term string) ([]Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("search", strings.TrimSpace(term))
	rel := &url.URL{Path: "search", RawQuery: values.Encode()}
	var payload []Product
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", rel.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		c.logger.Warn("api error status",
			zap.String("method", method),
			zap.String("path", rel.Path),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("api %s %s returned status %d", method, rel.Path, resp.StatusCode)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// itemPath builds "prefix/id" keeping ids with reserved characters in a
// single path segment.
func itemPath(prefix, id string) *url.URL {
	return &url.URL{
		Path:    prefix + "/" + id,
		RawPath: prefix + "/" + url.PathEscape(id),
	}
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	// Relative references resolve beneath the path only with a trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
