package shigure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/shigure/post"
)

const (
	maxCoverWidth = 1200
	jpegQuality   = 80
	maxCoverSize  = 10 << 20 // 10MB
)

// CoverCache downloads cover images, shrinks them to banner width and keeps
// the encoded JPEG in memory.
type CoverCache struct {
	mu    sync.Mutex
	items map[string][]byte
	http  *http.Client
}

// NewCoverCache returns an empty CoverCache using client for downloads.
func NewCoverCache(client *http.Client) *CoverCache {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &CoverCache{items: make(map[string][]byte), http: client}
}

// Get returns the processed cover for url, downloading it on first use.
func (c *CoverCache) Get(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	data, ok := c.items[url]
	c.mu.Unlock()
	if ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}
	data, err = processCover(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items[url] = data
	c.mu.Unlock()
	return data, nil
}

// Len returns the number of cached covers.
func (c *CoverCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// processCover decodes an image, resizes it to maxCoverWidth when wider, and
// encodes it as JPEG.
func processCover(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxCoverWidth {
		newH := h * maxCoverWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxCoverWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) handleCover(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.ErrNotFound
	}
	p, err := a.Cache.GetPost(number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	cover, err := post.Cover(p.Body)
	if err != nil {
		return echo.ErrNotFound
	}
	data, err := a.Covers.Get(c.Request().Context(), cover)
	if err != nil {
		a.Log.Warn("cover unavailable", zap.Int("post", number), zap.String("url", cover), zap.Error(err))
		return c.Redirect(http.StatusFound, cover)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
