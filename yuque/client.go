// Package yuque fetches documents and their book metadata from yuque.com.
package yuque

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DocURLPattern matches document URLs of the form
// https://www.yuque.com/<group>/<book>/<doc>, including team subdomains.
var DocURLPattern = regexp.MustCompile(`^https?://([\w-]+\.)*yuque\.com/[^/?#]+/[^/?#]+/[^/?#]+`)

// ValidateDocURL reports whether raw looks like a document URL.
func ValidateDocURL(raw string) error {
	if raw == "" || !DocURLPattern.MatchString(raw) {
		return fmt.Errorf("invalid document URL %q: expected https://www.yuque.com/<group>/<book>/<doc>", raw)
	}
	return nil
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the origin used for the docs API. When empty the
	// origin of the document page is used.
	BaseURL   string
	Cookies   string
	UserAgent string
	Proxies   map[string]string // scheme -> proxy URL
	Timeout   time.Duration
}

// Client talks to the site over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cookies    string
	userAgent  string
}

// NewClient creates a client. Proxies are chosen per request scheme and
// fall back to the environment's proxy settings.
func NewClient(opts Options) (*Client, error) {
	proxies := make(map[string]*url.URL, len(opts.Proxies))
	for scheme, raw := range opts.Proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy for %s: %w", scheme, err)
		}
		proxies[scheme] = u
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if u, ok := proxies[req.URL.Scheme]; ok {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    opts.BaseURL,
		cookies:    opts.Cookies,
		userAgent:  opts.UserAgent,
	}, nil
}

// newRequest creates a GET request carrying the client's headers.
func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.cookies != "" {
		req.Header.Set("Cookie", c.cookies)
	}
	return req, nil
}

// get performs the request and returns the body of a 200 response. The
// caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	return resp.Body, nil
}

// FetchPage fetches and parses a document page.
func (c *Client) FetchPage(ctx context.Context, docURL string) (*goquery.Document, error) {
	body, err := c.get(ctx, docURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// FetchBook fetches a document page and extracts its book metadata.
func (c *Client) FetchBook(ctx context.Context, docURL string) (*Book, error) {
	page, err := c.FetchPage(ctx, docURL)
	if err != nil {
		return nil, err
	}

	book, err := ExtractBook(page)
	if err != nil {
		return nil, err
	}

	if u, err := url.Parse(docURL); err == nil {
		book.Origin = u.Scheme + "://" + u.Host
	}
	book.URL = docURL
	return book, nil
}

// contentParams are sent with every docs API request.
var contentParams = url.Values{
	"include_contributors": {"true"},
	"include_like":         {"true"},
	"include_hits":         {"true"},
	"merge_dynamic_data":   {"false"},
}

// contentURL builds the docs API URL for a book's document.
func (c *Client) contentURL(book *Book) string {
	base := c.baseURL
	if base == "" {
		base = book.Origin
	}
	if base == "" {
		base = "https://www.yuque.com"
	}

	params := url.Values{}
	for k, v := range contentParams {
		params[k] = v
	}
	if book.ID != "" {
		params.Set("book_id", book.ID)
	}
	return base + "/api/docs/" + url.PathEscape(book.Slug) + "?" + params.Encode()
}

type contentResponse struct {
	Data *struct {
		Content *string `json:"content"`
	} `json:"data"`
}

// FetchContent fetches the lake HTML body of a book's document.
func (c *Client) FetchContent(ctx context.Context, book *Book) (string, error) {
	body, err := c.get(ctx, c.contentURL(book))
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp contentResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode content response: %w", err)
	}
	if resp.Data == nil || resp.Data.Content == nil {
		return "", ErrContentNotFound
	}
	return *resp.Data.Content, nil
}
