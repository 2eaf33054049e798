package yuquemd

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pevans/yuquemd/lake"
)

// maxBodyBytes bounds the size of documents accepted by the API.
const maxBodyBytes = 16 << 20

// APIServer exposes conversion over HTTP.
type APIServer struct {
	converter *lake.Converter
	history   *HistoryStore
}

// NewAPIServer creates an API server. history may be nil, in which case the
// exports endpoint reports that no history is configured.
func NewAPIServer(converter *lake.Converter, history *HistoryStore) *APIServer {
	if converter == nil {
		converter = &lake.Converter{}
	}
	return &APIServer{
		converter: converter,
		history:   history,
	}
}

// ConvertRequest is the JSON body accepted by the convert endpoints.
type ConvertRequest struct {
	HTML string `json:"html"`
}

// ConvertResponse is returned by POST /api/v1/convert.
type ConvertResponse struct {
	Markdown []string         `json:"markdown"`
	Document string           `json:"document"`
	Blocks   [][]lake.Segment `json:"blocks,omitempty"`
	Errors   []CardErrorInfo  `json:"errors"`
}

// CardErrorInfo describes a skipped card in API responses.
type CardErrorInfo struct {
	Block   int    `json:"block"`
	Card    string `json:"card"`
	Message string `json:"message"`
}

// SetupRouter configures the Gin router with the API routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/health", s.HandleHealth)
	api.POST("/convert", s.HandleConvert)
	api.POST("/preview", s.HandlePreview)
	api.GET("/exports", s.HandleListExports)

	return router
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleHealth handles GET /api/v1/health.
func (s *APIServer) HandleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readDocument reads the lake HTML from either a JSON body or a raw
// text/html body.
func readDocument(ctx *gin.Context) (string, error) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes)

	if strings.HasPrefix(ctx.ContentType(), "text/html") {
		data, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", errors.New("html is required")
		}
		return string(data), nil
	}

	var req ConvertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.HTML) == "" {
		return "", errors.New("html is required")
	}
	return req.HTML, nil
}

// HandleConvert handles POST /api/v1/convert. Pass ?blocks=true to include
// the classified segments of every block.
func (s *APIServer) HandleConvert(ctx *gin.Context) {
	doc, err := readDocument(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	result, err := s.converter.ConvertString(doc)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, errorResponse("parse_error", err.Error()))
		return
	}

	resp := ConvertResponse{
		Markdown: result.Markdown,
		Document: result.String(),
		Errors:   make([]CardErrorInfo, 0, len(result.Errors)),
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, CardErrorInfo{Block: e.Block, Card: e.Name, Message: e.Err.Error()})
	}
	if ctx.Query("blocks") == "true" {
		for _, b := range result.Blocks {
			resp.Blocks = append(resp.Blocks, b.Segments())
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandlePreview handles POST /api/v1/preview and returns the converted
// document rendered as HTML.
func (s *APIServer) HandlePreview(ctx *gin.Context) {
	doc, err := readDocument(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	result, err := s.converter.ConvertString(doc)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, errorResponse("parse_error", err.Error()))
		return
	}

	page, err := RenderPreviewPage(ctx.DefaultQuery("title", "preview"), result.String())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to render preview"))
		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// HandleListExports handles GET /api/v1/exports.
func (s *APIServer) HandleListExports(ctx *gin.Context) {
	if s.history == nil {
		ctx.JSON(http.StatusNotFound, errorResponse("not_configured", "Export history is not configured"))
		return
	}

	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := s.history.List(limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list exports"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exports": records, "total": len(records)})
}
