// Package notion is a small client for the parts of the Notion REST API the
// site reads: database queries and block children.
package notion

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

	"github.com/anish3d/folio/internal/models"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
	// MaxPageSize is the largest page the API hands out.
	MaxPageSize = 100
)

// ErrMissingToken is returned by every call of a client built without a token.
var ErrMissingToken = errors.New("notion: token is not configured")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client talks to the Notion API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	version    string
	pageSize   int
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithVersion overrides the Notion-Version header.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithPageSize sets the page size requested per call (1-100).
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= MaxPageSize {
			c.pageSize = n
		}
	}
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      strings.TrimSpace(token),
		version:    DefaultVersion,
		pageSize:   MaxPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryDatabase returns every record of the database, following cursors
// until the API reports no more results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]Page, error) {
	if strings.TrimSpace(databaseID) == "" {
		return nil, errors.New("notion: database id is empty")
	}
	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"
	return collect(ctx, func(ctx context.Context, cursor string) (*listResponse[Page], error) {
		var out listResponse[Page]
		body := queryRequest{StartCursor: cursor, PageSize: c.pageSize}
		if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		return &out, nil
	})
}

// ListChildren returns the direct children of a block or page, following
// cursors until the API reports no more results.
func (c *Client) ListChildren(ctx context.Context, blockID string) ([]models.Block, error) {
	if strings.TrimSpace(blockID) == "" {
		return nil, errors.New("notion: block id is empty")
	}
	path := "/v1/blocks/" + url.PathEscape(blockID) + "/children"
	return collect(ctx, func(ctx context.Context, cursor string) (*listResponse[models.Block], error) {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var out listResponse[models.Block]
		if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
			return nil, fmt.Errorf("list children of %s: %w", blockID, err)
		}
		return &out, nil
	})
}

// collect drives a cursor-paginated endpoint to the end, issuing exactly one
// request per page and concatenating results in order.
func collect[T any](ctx context.Context, fetch func(ctx context.Context, cursor string) (*listResponse[T], error)) ([]T, error) {
	all := make([]T, 0)
	cursor := ""
	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			return all, nil
		}
		cursor = *page.NextCursor
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
