// Package remote fetches catalog pages from the filamentcolors.xyz API.
package remote

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mkoistinen/filamentcolors/core"
)

// DefaultOrigin is the public catalog service.
const DefaultOrigin = "https://filamentcolors.xyz"

// maxBodySize bounds a single page response.
const maxBodySize = 8 << 20

//go:embed page.schema.json
var pageSchemaJSON string

var pageSchema = mustSchema(pageSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

// Client fetches swatch pages over HTTP.
type Client struct {
	origin     string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the catalog service at origin.
// An empty origin means DefaultOrigin.
func NewClient(origin string, opts ...Option) (*Client, error) {
	if origin == "" {
		origin = DefaultOrigin
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid service origin %q", origin)
	}

	c := &Client{
		origin:     strings.TrimRight(origin, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "filamentcolors",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Origin returns the service origin without a trailing slash.
func (c *Client) Origin() string {
	return c.origin
}

// PageURL returns the address of the given page. The first page has no
// query string.
func (c *Client) PageURL(page int) string {
	u := c.origin + "/api/swatch/"
	if page > 1 {
		u += "?page=" + strconv.Itoa(page)
	}
	return u
}

// wirePage is the JSON shape of one page. Next is kept raw because the
// service sends a URL, null or nothing.
type wirePage struct {
	Count   int              `json:"count"`
	Next    json.RawMessage  `json:"next"`
	Results []core.RawSwatch `json:"results"`
}

// FetchPage retrieves one page of the catalog.
func (c *Client) FetchPage(ctx context.Context, page int) (*core.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	pageURL := c.PageURL(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w: GET %s: %s", ErrUnexpectedStatus, pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("GET %s: reading body: %w", pageURL, err)
	}

	result, err := decodePage(body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", pageURL, err)
	}

	c.logger.Debug("fetched page",
		"page", page,
		"results", len(result.Results),
		"next", result.Next,
		"elapsed", time.Since(start))
	return result, nil
}

func decodePage(body []byte) (*core.Page, error) {
	validation, err := pageSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if !validation.Valid() {
		problems := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(problems, "; "))
	}

	var wp wirePage
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return &core.Page{
		Results: wp.Results,
		Next:    hasNext(wp.Next),
		Count:   wp.Count,
	}, nil
}

// hasNext reports whether a raw "next" value signals another page.
// Absent, null, false and "" all mean this is the last page.
func hasNext(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0,
		bytes.Equal(raw, []byte("null")),
		bytes.Equal(raw, []byte("false")),
		bytes.Equal(raw, []byte(`""`)):
		return false
	}
	return true
}
