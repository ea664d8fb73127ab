package thumbnail

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

var _ ports.ThumbnailGenerator = (*Generator)(nil)

// Generator renders square previews of image-backed items.
// Rendered previews are cached by stored path; stored files are immutable.
type Generator struct {
	size    int
	workers int
	cache   *lru.Cache[string, image.Image]
	log     *logrus.Entry

	inflight sync.WaitGroup
}

// New creates a generator producing size x size previews
func New(size, cacheSize, workers int, log *logrus.Entry) (*Generator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %d", size)
	}
	if workers <= 0 {
		workers = 1
	}
	cache, err := lru.New[string, image.Image](max(cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}
	return &Generator{
		size:    size,
		workers: workers,
		cache:   cache,
		log:     log.WithField("component", "thumbnail"),
	}, nil
}

// Generate renders in the background and calls done on success only
func (g *Generator) Generate(ctx context.Context, item domain.ClipboardItem, done func(id string, thumb image.Image)) {
	if !item.IsFile() {
		return
	}
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		g.renderInto(ctx, item, done)
	}()
}

// GenerateAll renders previews for items with at most workers decodes in
// flight. It returns when every item has been attempted or ctx is done.
func (g *Generator) GenerateAll(ctx context.Context, items []domain.ClipboardItem, done func(id string, thumb image.Image)) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for _, item := range items {
		if !item.IsFile() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			g.renderInto(ctx, item, done)
			return nil
		})
	}
	eg.Wait()
}

// Wait blocks until every Generate call has finished
func (g *Generator) Wait() {
	g.inflight.Wait()
}

func (g *Generator) renderInto(ctx context.Context, item domain.ClipboardItem, done func(id string, thumb image.Image)) {
	if ctx.Err() != nil {
		return
	}
	thumb, err := g.Render(item.FilePath)
	if err != nil {
		g.log.WithError(err).WithField("id", item.ID).Debug("no thumbnail")
		return
	}
	done(item.ID, thumb)
}

// Render returns the cached preview for path, decoding it on a miss
func (g *Generator) Render(path string) (image.Image, error) {
	if thumb, ok := g.cache.Get(path); ok {
		return thumb, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	thumb := Fit(src, g.size)
	g.cache.Add(path, thumb)
	return thumb, nil
}

// Fit scales src to fit inside a size x size canvas, preserving aspect
// ratio and centering it on a transparent background
func Fit(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}

	w, h := size, size
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*size/b.Dx())
	} else {
		w = max(1, b.Dx()*size/b.Dy())
	}
	x0 := (size - w) / 2
	y0 := (size - h) / 2

	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, b, draw.Over, nil)
	return dst
}
