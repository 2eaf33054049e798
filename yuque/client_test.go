package yuque

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageJSON = `{"book":{"id":41966892,"type":"Book"},"group":{"name":"Tech Notes"},"doc":{"title":"Intro to Go","type":"Doc","description":"first steps","slug":"intro"}}`

// Test helper: render a document page embedding the given page data
func pageHTML(data string) string {
	return `<html><head><script src="/app.js"></script>` +
		`<script>window.appData = JSON.parse(decodeURIComponent("` + url.PathEscape(data) + `"));</script>` +
		`</head><body><div id="app"></div></body></html>`
}

// apiCapture records the last docs API request seen by the test server
type apiCapture struct {
	mu     sync.Mutex
	query  url.Values
	header http.Header
}

func (c *apiCapture) get() (url.Values, http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query, c.header
}

// Test helper: start a server serving one page and the docs API
func newTestSite(t *testing.T, page string, content string) (*httptest.Server, *apiCapture) {
	t.Helper()
	lastAPI := &apiCapture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/tech/go/intro", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/api/docs/intro", func(w http.ResponseWriter, r *http.Request) {
		lastAPI.mu.Lock()
		lastAPI.query = r.URL.Query()
		lastAPI.header = r.Header.Clone()
		lastAPI.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(content))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, lastAPI
}

// TestValidateDocURL verifies the accepted document URL shapes
func TestValidateDocURL(t *testing.T) {
	assert.NoError(t, ValidateDocURL("https://www.yuque.com/tech/go/intro"))
	assert.NoError(t, ValidateDocURL("https://yuque.com/tech/go/intro?view=doc_embed"))
	assert.NoError(t, ValidateDocURL("https://team-a.yuque.com/tech/go/intro"))

	assert.Error(t, ValidateDocURL(""))
	assert.Error(t, ValidateDocURL("https://www.yuque.com/tech/go"))
	assert.Error(t, ValidateDocURL("https://example.com/tech/go/intro"))
	assert.Error(t, ValidateDocURL("ftp://www.yuque.com/a/b/c"))
}

// TestParsePageData verifies the metadata mapping
func TestParsePageData(t *testing.T) {
	book, err := ParsePageData(url.PathEscape(pageJSON))
	require.NoError(t, err)

	assert.Equal(t, "41966892", book.ID)
	assert.Equal(t, "Intro to Go", book.Title)
	assert.Equal(t, "Tech Notes", book.Author)
	assert.Equal(t, "Book", book.BookType)
	assert.Equal(t, "Doc", book.DocType)
	assert.Equal(t, "intro", book.Slug)
	assert.Equal(t, "first steps", book.Description)
}

// TestParsePageData_MissingKeys verifies incomplete data is rejected
func TestParsePageData_MissingKeys(t *testing.T) {
	for _, data := range []string{
		`{"group":{"name":"g"},"doc":{"title":"t","slug":"s"}}`,
		`{"book":{"id":1},"doc":{"title":"t","slug":"s"}}`,
		`{"book":{"id":1},"group":{"name":"g"},"doc":{"title":"t"}}`,
	} {
		_, err := ParsePageData(url.PathEscape(data))
		assert.ErrorIs(t, err, ErrMetadataNotFound, data)
	}
}

// TestParsePageData_Malformed verifies decode failures are wrapped
func TestParsePageData_Malformed(t *testing.T) {
	_, err := ParsePageData("%zz")
	assert.ErrorContains(t, err, "failed to unescape page data")

	_, err = ParsePageData("not%20json")
	assert.ErrorContains(t, err, "failed to parse page data")
}

// TestExtractBook_NoScript verifies pages without page data are rejected
func TestExtractBook_NoScript(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>login</p></body></html>`))
	require.NoError(t, err)

	_, err = ExtractBook(doc)
	assert.ErrorIs(t, err, ErrMetadataNotFound)
}

// TestFetchBookAndContent verifies the page and API round trip
func TestFetchBookAndContent(t *testing.T) {
	server, lastAPI := newTestSite(t, pageHTML(pageJSON), `{"data":{"content":"<h1>Hi</h1>"}}`)

	client, err := NewClient(Options{Cookies: "_yuque_session=xyz", UserAgent: "test-agent"})
	require.NoError(t, err)

	ctx := context.Background()
	book, err := client.FetchBook(ctx, server.URL+"/tech/go/intro")
	require.NoError(t, err)
	assert.Equal(t, "intro", book.Slug)
	assert.Equal(t, server.URL, book.Origin)
	assert.Equal(t, server.URL+"/tech/go/intro", book.URL)

	content, err := client.FetchContent(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", content)

	query, header := lastAPI.get()
	assert.Equal(t, "41966892", query.Get("book_id"))
	assert.Equal(t, "false", query.Get("merge_dynamic_data"))
	assert.Equal(t, "_yuque_session=xyz", header.Get("Cookie"))
	assert.Equal(t, "test-agent", header.Get("User-Agent"))
}

// TestFetchContent_Missing verifies responses without content are errors
func TestFetchContent_Missing(t *testing.T) {
	server, _ := newTestSite(t, pageHTML(pageJSON), `{"data":{}}`)

	client, err := NewClient(Options{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.FetchContent(context.Background(), &Book{ID: "1", Slug: "intro"})
	assert.ErrorIs(t, err, ErrContentNotFound)
}

// TestFetchBook_HTTPError verifies non-200 responses are reported
func TestFetchBook_HTTPError(t *testing.T) {
	server, _ := newTestSite(t, "", "")

	client, err := NewClient(Options{})
	require.NoError(t, err)

	_, err = client.FetchBook(context.Background(), server.URL+"/missing/doc/here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error: 404")
}

// TestNewClient_InvalidProxy verifies proxy URLs are validated up front
func TestNewClient_InvalidProxy(t *testing.T) {
	_, err := NewClient(Options{Proxies: map[string]string{"http": "://bad"}})
	assert.Error(t, err)
}

// TestContentURL verifies the docs API URL layout
func TestContentURL(t *testing.T) {
	client, err := NewClient(Options{})
	require.NoError(t, err)

	u, err := url.Parse(client.contentURL(&Book{ID: "7", Slug: "abc"}))
	require.NoError(t, err)
	assert.Equal(t, "www.yuque.com", u.Host)
	assert.Equal(t, "/api/docs/abc", u.Path)
	assert.Equal(t, "7", u.Query().Get("book_id"))
}
