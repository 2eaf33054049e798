package yuquemd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pevans/yuquemd/lake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: perform a request against the router
func doRequest(router *gin.Engine, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandleHealth verifies the health endpoint
func TestHandleHealth(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// TestHandleConvert_JSON verifies conversion of a JSON request body
func TestHandleConvert_JSON(t *testing.T) {
	router := NewAPIServer(lake.NewConverter(2), nil).SetupRouter()

	body, err := json.Marshal(ConvertRequest{HTML: `<h1>Title</h1><p>Body <strong>bold</strong></p>`})
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/v1/convert", "application/json", string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"# Title\n", "Body **bold**"}, resp.Markdown)
	assert.Equal(t, "# Title\n\nBody **bold**", resp.Document)
	assert.Empty(t, resp.Errors)
	assert.Nil(t, resp.Blocks)
}

// TestHandleConvert_RawHTML verifies a text/html body is accepted as is
func TestHandleConvert_RawHTML(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodPost, "/api/v1/convert", "text/html; charset=utf-8", `<ul><li>a</li><li>b</li></ul>`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"- a\n- b\n"}, resp.Markdown)
}

// TestHandleConvert_Blocks verifies classified segments are included on
// request
func TestHandleConvert_Blocks(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodPost, "/api/v1/convert?blocks=true", "text/html", `<h3>Deep</h3>`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Blocks [][]struct {
			Classification struct {
				Kind  string `json:"kind"`
				Level int    `json:"level"`
			} `json:"classification"`
			Text string `json:"text"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Blocks, 1)
	require.Len(t, resp.Blocks[0], 1)
	assert.Equal(t, "heading", resp.Blocks[0][0].Classification.Kind)
	assert.Equal(t, 3, resp.Blocks[0][0].Classification.Level)
	assert.Equal(t, "Deep", resp.Blocks[0][0].Text)
}

// TestHandleConvert_CardErrors verifies skipped cards are reported
func TestHandleConvert_CardErrors(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodPost, "/api/v1/convert", "text/html",
		`<p>ok</p><card name="codeblock" value="data:%7Bbroken"></card>`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ok", ""}, resp.Markdown)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Block)
	assert.Equal(t, "codeblock", resp.Errors[0].Card)
	assert.NotEmpty(t, resp.Errors[0].Message)
}

// TestHandleConvert_BadRequest verifies invalid bodies are rejected
func TestHandleConvert_BadRequest(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"html":`},
		{"missing html", `{}`},
		{"blank html", `{"html":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/convert", "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "bad_request")
		})
	}
}

// TestHandlePreview verifies the preview endpoint renders HTML
func TestHandlePreview(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodPost, "/api/v1/preview?title=Notes", "text/html", `<h1>Hello</h1>`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Notes</title>")
	assert.Contains(t, w.Body.String(), "<h1>Hello</h1>")
}

// TestHandleListExports_NotConfigured verifies the endpoint without a
// history store
func TestHandleListExports_NotConfigured(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/exports", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_configured")
}

// TestHandleListExports verifies recorded exports are listed
func TestHandleListExports(t *testing.T) {
	store := createTestHistoryStore(t)
	for _, slug := range []string{"a", "b"} {
		_, err := store.Record(ExportRecord{BookID: "1", Slug: slug, Title: slug, Path: slug + ".md", Encoding: "utf-8"})
		require.NoError(t, err)
	}
	router := NewAPIServer(nil, store).SetupRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/exports?limit=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Exports []ExportRecord `json:"exports"`
		Total   int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Len(t, resp.Exports, 1)

	w = doRequest(router, http.MethodGet, "/api/v1/exports?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCORSPreflight verifies OPTIONS requests are answered by the middleware
func TestCORSPreflight(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	w := doRequest(router, http.MethodOptions, "/api/v1/convert", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestHandleConvert_EmptyRawHTML verifies a blank text/html body is
// rejected like a blank JSON field
func TestHandleConvert_EmptyRawHTML(t *testing.T) {
	router := NewAPIServer(nil, nil).SetupRouter()

	for _, body := range []string{"", "  \n"} {
		w := doRequest(router, http.MethodPost, "/api/v1/convert", "text/html", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "html is required")
	}

	w := doRequest(router, http.MethodPost, "/api/v1/preview", "text/html", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
