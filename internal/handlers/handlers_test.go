package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qretty/internal/config"
	"github.com/cristianadrielbraun/qretty/pkg/cache"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/qretty"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := New(config.Default(), cache.NewMemoryCache(), log.New(io.Discard))
	require.NoError(t, err)
	r := gin.New()
	h.Register(r)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestQRCodeHandlerRendersAndCaches(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/qr?data=hello&size=120")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	again := get(r, "/api/qr?data=hello&size=120")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.Equal(t, w.Body.Bytes(), again.Body.Bytes())

	other := get(r, "/api/qr?data=hello&size=120&style=dots")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
}

func TestQRCodeHandlerOptions(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/qr?url=example.com&effects=true&bg=true&gradient=radial&format=jpeg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = get(r, "/api/qr?data=pad&size=100&padding=10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	img, _, err := image.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestQRCodeHandlerErrors(t *testing.T) {
	r := newRouter(t)
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing payload", "", http.StatusBadRequest},
		{"bad url", "url=ftp://example.com", http.StatusBadRequest},
		{"bad level", "data=x&level=Z", http.StatusBadRequest},
		{"size too small", "data=x&size=4", http.StatusBadRequest},
		{"size too large", "data=x&size=99999", http.StatusBadRequest},
		{"bad style", "data=x&style=stars", http.StatusBadRequest},
		{"bad colour", "data=x&fg=notacolour", http.StatusBadRequest},
		{"bad strength", "data=x&bgStrength=2", http.StatusBadRequest},
		{"icon not configured", "data=x&icon=over", http.StatusBadRequest},
		{"bad format", "data=x&format=gif", http.StatusBadRequest},
		{"too long to encode", "data=" + strings.Repeat("x", 4000), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/api/qr?"+tt.query)
			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestClassicQR(t *testing.T) {
	r := newRouter(t)
	w := get(r, "/api/qr/classic?data=hello&size=150&level=H")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/qr/classic?size=150").Code)
}

func postVerify(t *testing.T, r http.Handler, img image.Image, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if img != nil {
		fw, err := mw.CreateFormFile("image", "qr.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(fw, img))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/verify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyHandler(t *testing.T) {
	r := newRouter(t)
	p := qretty.DefaultParams()
	p.Payload = []byte("Test")
	p.Level = encoder.H
	p.Size = 212
	img, err := qretty.New(p).Render()
	require.NoError(t, err)

	w := postVerify(t, r, img, map[string]string{"expected": "Test", "deteriorate": "false"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"raw":"high"}`, w.Body.String())

	w = postVerify(t, r, img, map[string]string{"expected": "Test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "high", resp["raw"])
	assert.Contains(t, []string{"none", "low", "high"}, resp["deteriorated"])

	w = postVerify(t, r, img, map[string]string{"expected": "other", "deteriorate": "false"})
	assert.JSONEq(t, `{"raw":"none"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, postVerify(t, r, img, nil).Code)
	assert.Equal(t, http.StatusBadRequest, postVerify(t, r, nil, map[string]string{"expected": "Test"}).Code)
}

func TestNormalizeHTTPURL(t *testing.T) {
	got, err := normalizeHTTPURL("  example.com/path ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path", got)

	got, err = normalizeHTTPURL("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", got)

	for _, bad := range []string{"", "ftp://example.com", "https://"} {
		_, err := normalizeHTTPURL(bad)
		assert.Error(t, err, bad)
	}
}
