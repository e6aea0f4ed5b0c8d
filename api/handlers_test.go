package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawit-cms/drawit-go/cache"
	"github.com/drawit-cms/drawit-go/config"
	"github.com/drawit-cms/drawit-go/models"
	"github.com/drawit-cms/drawit-go/store"
)

func testApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	cfg := &config.Config{
		DatabasePath: filepath.Join(base, "test.db"),
		UploadsPath:  filepath.Join(base, "uploads"),
		UploadsURL:   "/uploads",
		JWTSecret:    "test-secret",
		NonceTTL:     time.Hour,
	}
	db, err := store.NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewApp(cfg, db, cache.NewManager())
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSaveDiagramHandlerRejectsBadNonce(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.POST("/save", app.SaveDiagramHandler)

	w := postForm(r, "/save", url.Values{
		"nonce":    {"forged"},
		"xml":      {"<mxfile><diagram>d</diagram></mxfile>"},
		"img_type": {"png"},
		"img_data": {"data"},
		"post_id":  {"1"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveDiagramResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Sorry, your nonce did not verify.", resp.HTML)
}

func TestSaveDiagramHandlerCreatesAttachment(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.POST("/save", app.SaveDiagramHandler)

	nonce, err := MintNonce(app.Config.JWTSecret, time.Hour)
	require.NoError(t, err)

	w := postForm(r, "/save", url.Values{
		"nonce":    {nonce},
		"xml":      {"<mxfile><diagram>d</diagram></mxfile>"},
		"img_type": {"png"},
		"img_data": {"data:image/png;base64,cG5nYnl0ZXM="},
		"post_id":  {"1"},
		"title":    {"Flow"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveDiagramResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success, "save failed: %s", resp.HTML)
	assert.NotZero(t, resp.AttID)
	assert.Contains(t, resp.HTML, "<img")
}

func TestGetDiagramHandler(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.GET("/diagrams/:id", app.GetDiagramHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagrams/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagrams/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderDiagramHandlerMissingAttachment(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.GET("/diagrams/:id/render", app.RenderDiagramHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagrams/999/render", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "<!-- drawit error: Attachment not found -->", resp["html"])
}

func TestRenderContentHandler(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.POST("/render", app.RenderContentHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"content":"<p>plain</p>"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "<p>plain</p>", resp["html"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptionsHandlers(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.GET("/options", app.GetOptionsHandler)
	r.POST("/options", app.UpdateOptionsHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Options    models.Options `json:"options"`
		ValidTypes []string       `json:"validTypes"`
		TempDirs   []string       `json:"tempDirs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.DefaultOptions(), got.Options)
	assert.Equal(t, []string{"png"}, got.ValidTypes)
	assert.Equal(t, models.ValidTempDirs(), got.TempDirs)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/options",
		strings.NewReader(`{"default_type":"svg","allow_svg":"yes","temp_dir":"bogus","use_figure_tag":"yes"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Options models.Options `json:"options"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "svg", updated.Options.DefaultType)
	assert.Equal(t, "yes", updated.Options.AllowSVG)
	assert.Equal(t, models.TempDirSystem, updated.Options.TempDir, "unknown temp dir reverts to default")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "svg", got.Options.DefaultType)
	assert.Equal(t, []string{"png", "svg"}, got.ValidTypes)
}

func TestMimeTypesHandler(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.GET("/mime-types", app.MimeTypesHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mime-types", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		MimeTypes map[string]string `json:"mimeTypes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp.MimeTypes, "svg")
	assert.Equal(t, "image/png", resp.MimeTypes["png"])
}

func TestNonceHandler(t *testing.T) {
	app := testApp(t)
	r := gin.New()
	r.GET("/nonce", app.NonceHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonce", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, VerifyNonce(app.Config.JWTSecret, resp["nonce"]))
}
