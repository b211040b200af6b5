package imageview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrUnsupportedSource is returned for image sources the loader cannot read.
var ErrUnsupportedSource = errors.New("unsupported image source")

// DefaultCacheTTL is how long a natural size stays cached.
const DefaultCacheTTL = 30 * time.Minute

// Loader resolves the natural size of image sources. It understands data
// URIs, local paths (relative to BaseDir) and http(s) URLs, and caches the
// sizes it found by source.
type Loader struct {
	BaseDir string
	Client  *http.Client

	log   *zap.Logger
	cache *cache.Cache
}

// NewLoader returns a loader whose cache entries live for ttl.
func NewLoader(log *zap.Logger, ttl time.Duration) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	// No janitor: expired entries are dropped lazily on lookup.
	return &Loader{
		Client: http.DefaultClient,
		log:    log,
		cache:  cache.New(ttl, 0),
	}
}

// Cached returns the cached natural size of src.
func (l *Loader) Cached(src string) (Size, bool) {
	if x, found := l.cache.Get(src); found {
		return x.(Size), true
	}
	return Size{}, false
}

// Forget drops src from the cache.
func (l *Loader) Forget(src string) {
	l.cache.Delete(src)
}

// Load returns the natural size of src, decoding only the image header.
func (l *Loader) Load(ctx context.Context, src string) (Size, error) {
	if size, ok := l.Cached(src); ok {
		return size, nil
	}
	rc, err := l.open(ctx, src)
	if err != nil {
		return Size{}, err
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return Size{}, fmt.Errorf("decode %s: %w", shorten(src), err)
	}
	size := Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	l.cache.Set(src, size, cache.DefaultExpiration)
	l.log.Debug("image measured",
		zap.String("src", shorten(src)),
		zap.String("format", format),
		zap.Float64("width", size.Width),
		zap.Float64("height", size.Height))
	return size, nil
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURI(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		return resp.Body, nil
	}

	path := src
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		path = u.Path
	} else if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
	}
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedSource)
	}
	header, payload := src[len("data:"):comma], src[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func shorten(src string) string {
	if len(src) > 64 {
		return src[:61] + "..."
	}
	return src
}
