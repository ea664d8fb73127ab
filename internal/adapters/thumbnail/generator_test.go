package thumbnail

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/domain"
	"clipkeep/internal/logging"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

type collector struct {
	mu     sync.Mutex
	thumbs map[string]image.Image
}

func (c *collector) done(id string, thumb image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.thumbs == nil {
		c.thumbs = map[string]image.Image{}
	}
	c.thumbs[id] = thumb
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New(32, 8, 2, logging.Discard())
	require.NoError(t, err)
	return g
}

func TestFit_PreservesAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for x := 0; x < 200; x++ {
		for y := 0; y < 100; y++ {
			src.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}

	thumb := Fit(src, 32)

	assert.Equal(t, image.Rect(0, 0, 32, 32), thumb.Bounds())
	_, _, _, top := thumb.At(16, 0).RGBA()
	assert.Zero(t, top, "letterbox above a wide image stays transparent")
	_, g, _, a := thumb.At(16, 16).RGBA()
	assert.NotZero(t, a)
	assert.NotZero(t, g)
}

func TestGenerator_Generate(t *testing.T) {
	g := newTestGenerator(t)
	c := &collector{}
	item := domain.ClipboardItem{ID: "img", Text: domain.ImageText, FilePath: writePNG(t, 64, 64)}

	g.Generate(context.Background(), item, c.done)
	g.Wait()

	require.Contains(t, c.thumbs, "img")
	assert.Equal(t, 32, c.thumbs["img"].Bounds().Dx())
}

func TestGenerator_FailuresLeaveNoThumbnail(t *testing.T) {
	g := newTestGenerator(t)
	c := &collector{}
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("plain text"), 0644))

	g.Generate(context.Background(), domain.ClipboardItem{ID: "txt", Text: domain.FileText, FilePath: notImage}, c.done)
	g.Generate(context.Background(), domain.ClipboardItem{ID: "gone", Text: domain.FileText, FilePath: "/nonexistent.png"}, c.done)
	g.Generate(context.Background(), domain.ClipboardItem{ID: "text", Text: "not a file"}, c.done)
	g.Wait()

	assert.Empty(t, c.thumbs)
}

func TestGenerator_GenerateAll(t *testing.T) {
	g := newTestGenerator(t)
	c := &collector{}
	path := writePNG(t, 10, 40)
	items := []domain.ClipboardItem{
		{ID: "a", Text: domain.ImageText, FilePath: path},
		{ID: "b", Text: domain.ImageText, FilePath: path},
		{ID: "c", Text: "plain"},
		{ID: "d", Text: domain.FileText, FilePath: "/missing.png"},
	}

	g.GenerateAll(context.Background(), items, c.done)

	assert.Len(t, c.thumbs, 2)
	assert.Equal(t, 1, g.cache.Len(), "previews are cached by stored path")
}

func TestGenerator_GenerateAllCancelled(t *testing.T) {
	g := newTestGenerator(t)
	c := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g.GenerateAll(ctx, []domain.ClipboardItem{{ID: "a", Text: domain.ImageText, FilePath: writePNG(t, 8, 8)}}, c.done)

	assert.Empty(t, c.thumbs)
}

func TestNew_RejectsBadSize(t *testing.T) {
	_, err := New(0, 8, 1, logging.Discard())
	assert.Error(t, err)
}
