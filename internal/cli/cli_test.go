package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qretty/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderThenVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")

	out, err := run(t, "render", "-o", path, "--data", "Test", "--level", "H", "--size", "212", "--check")
	require.NoError(t, err, out)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "high")

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 212, img.Bounds().Dx())

	out, err = run(t, "verify", "--expected", "Test", "--deteriorate=false", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "high")
	assert.NotContains(t, out, "deteriorated")

	_, err = run(t, "verify", "--expected", "something else", path)
	assert.Error(t, err)
}

func TestRenderWithEffectsAndJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.jpg")
	out, err := run(t, "render", "-o", path, "--data", "hello", "--effects", "--background", "--style", "dots")
	require.NoError(t, err, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xff, 0xd8}))
}

func TestRenderRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "render", "-o", filepath.Join(dir, "qr.gif"), "--data", "x")
	assert.Error(t, err)

	_, err = run(t, "render", "-o", filepath.Join(dir, "qr.png"), "--data", "x", "--level", "Z")
	assert.Error(t, err)

	_, err = run(t, "render", "--data", "x")
	assert.Error(t, err, "output is required")
}

func TestRenderUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "qretty.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[render]\nsize = 150\nlevel = \"H\"\n"), 0o644))
	path := filepath.Join(dir, "qr.png")

	out, err := run(t, "-c", cfgPath, "render", "-o", path, "--data", "configured")
	require.NoError(t, err, out)
	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())

	// Flags win over the file.
	out, err = run(t, "-c", cfgPath, "render", "-o", path, "--data", "configured", "--size", "120")
	require.NoError(t, err, out)
	img, err = imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestNewEngineServesAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Cache.Backend = "memory"
	r, c, err := newEngine(context.Background(), cfg, log.New(&bytes.Buffer{}))
	require.NoError(t, err)
	defer c.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr?data=hi", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestNewEngineRejectsUnknownCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "disk"
	_, _, err := newEngine(context.Background(), cfg, log.New(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestLoggerContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	ctx := withLogger(context.Background(), l)
	assert.Same(t, l, loggerFromContext(ctx))

	newProgress(l).done("Rendered")
	assert.Contains(t, buf.String(), "Rendered (")
}
