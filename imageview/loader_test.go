package imageview

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func pngDataURI(t *testing.T, w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func TestLoaderDataURI(t *testing.T) {
	l := NewLoader(nil, 0)
	src := pngDataURI(t, 64, 16)
	_, ok := l.Cached(src)
	assert.False(t, ok)

	size, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 64, Height: 16}, size)
	assert.Equal(t, 4.0, size.Ratio())

	cached, ok := l.Cached(src)
	assert.True(t, ok)
	assert.Equal(t, size, cached)

	l.Forget(src)
	_, ok = l.Cached(src)
	assert.False(t, ok)
}

func TestLoaderFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), pngBytes(t, 10, 40), 0o644))

	l := NewLoader(nil, 0)
	l.BaseDir = dir
	size, err := l.Load(context.Background(), "pic.png")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 10, Height: 40}, size)

	size, err = l.Load(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "pic.png")))
	require.NoError(t, err)
	assert.Equal(t, 0.25, size.Ratio())

	_, err = l.Load(context.Background(), "nope.png")
	assert.Error(t, err)
}

func TestLoaderHTTP(t *testing.T) {
	body := pngBytes(t, 12, 12)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(nil, 0)
	l.Client = srv.Client()
	size, err := l.Load(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 12, Height: 12}, size)

	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")
}

func TestLoaderRejects(t *testing.T) {
	l := NewLoader(nil, 0)
	_, err := l.Load(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = l.Load(context.Background(), "data:image/png;base64")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = l.Load(context.Background(), "data:text/plain,hello")
	assert.Error(t, err)
}
