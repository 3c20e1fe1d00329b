// Package dataapi is a client for the marketplace Data API.
package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "DM-Scripts/1.0"

// maxPages stops runaway pagination when the API keeps returning a next link.
const maxPages = 10000

// APIError is returned for non-2xx API responses.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data api error for %s: HTTP status %d: %s", e.URL, e.StatusCode, e.Message)
}

// RequestError represents a transport or decoding failure.
type RequestError struct {
	URL     string
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("data api request %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("data api request %s: %s", e.URL, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the Data API with a bearer token.
type Client struct {
	baseURL   string
	authToken string
	userAgent string
	http      *http.Client
}

// New creates a Data API client.
func New(baseURL, authToken string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		userAgent: userAgent,
		http:      &http.Client{Timeout: opts.Timeout},
	}
}

type links struct {
	Next string `json:"next"`
}

// GetFramework fetches a single framework by slug.
func (c *Client) GetFramework(ctx context.Context, slug string) (*Framework, error) {
	var resp struct {
		Frameworks Framework `json:"frameworks"`
	}
	if err := c.get(ctx, c.endpoint("/frameworks/"+url.PathEscape(slug), nil), &resp); err != nil {
		return nil, err
	}
	return &resp.Frameworks, nil
}

// FindFrameworkSuppliers returns every supplier registered for a framework.
func (c *Client) FindFrameworkSuppliers(ctx context.Context, frameworkSlug string) ([]SupplierFramework, error) {
	return getPages[SupplierFramework](ctx, c,
		c.endpoint("/frameworks/"+url.PathEscape(frameworkSlug)+"/suppliers", nil),
		"supplierFrameworks")
}

// FindDraftServices returns a supplier's draft services on a framework.
func (c *Client) FindDraftServices(ctx context.Context, supplierID int, frameworkSlug string) ([]DraftService, error) {
	query := url.Values{}
	query.Set("supplier_id", strconv.Itoa(supplierID))
	query.Set("framework", frameworkSlug)
	return getPages[DraftService](ctx, c, c.endpoint("/draft-services", query), "services")
}

// FindServices returns every published service on a framework.
func (c *Client) FindServices(ctx context.Context, frameworkSlug string) ([]Service, error) {
	query := url.Values{}
	query.Set("framework", frameworkSlug)
	return getPages[Service](ctx, c, c.endpoint("/services", query), "services")
}

// FindUsers returns the user accounts belonging to a supplier.
func (c *Client) FindUsers(ctx context.Context, supplierID int) ([]User, error) {
	query := url.Values{}
	query.Set("supplier_id", strconv.Itoa(supplierID))
	return getPages[User](ctx, c, c.endpoint("/users", query), "users")
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getPages follows links.next until the API stops returning one, collecting
// the list stored under key on every page.
func getPages[T any](ctx context.Context, c *Client, firstURL, key string) ([]T, error) {
	var items []T
	next := firstURL
	for page := 0; next != "" && page < maxPages; page++ {
		var body map[string]json.RawMessage
		if err := c.get(ctx, next, &body); err != nil {
			return nil, err
		}

		if raw, ok := body[key]; ok {
			var pageItems []T
			if err := json.Unmarshal(raw, &pageItems); err != nil {
				return nil, &RequestError{URL: next, Message: "failed to decode " + key, Cause: err}
			}
			items = append(items, pageItems...)
		}

		next = ""
		if raw, ok := body["links"]; ok {
			var l links
			if err := json.Unmarshal(raw, &l); err == nil {
				next = l.Next
			}
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, urlStr string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &RequestError{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{URL: urlStr, StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{URL: urlStr, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		if s, ok := payload.Error.(string); ok {
			return s
		}
		b, _ := json.Marshal(payload.Error)
		return string(b)
	}
	return strings.TrimSpace(string(body))
}
