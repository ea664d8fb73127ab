package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpener(env map[string]string, onPath ...string) *Opener {
	available := map[string]bool{}
	for _, p := range onPath {
		available[p] = true
	}
	return &Opener{
		getenv: func(k string) string { return env[k] },
		lookPath: func(name string) (string, error) {
			if available[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
	}
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestCommand_TextUsesEditor(t *testing.T) {
	o := newTestOpener(map[string]string{"EDITOR": "hx"}, "xdg-open", "open")
	path := writeFile(t, "notes.md")

	cmd, err := o.Command(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hx", path}, cmd.Args)
}

func TestCommand_VisualFallback(t *testing.T) {
	o := newTestOpener(map[string]string{"VISUAL": "code"})
	cmd, err := o.Command(writeFile(t, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "code", cmd.Args[0])
}

func TestCommand_BinaryUsesViewer(t *testing.T) {
	o := newTestOpener(map[string]string{"EDITOR": "hx"}, "xdg-open", "open")
	cmd, err := o.Command(writeFile(t, "photo.png"))
	require.NoError(t, err)
	assert.Contains(t, []string{"/usr/bin/xdg-open", "/usr/bin/open"}, cmd.Path)
}

func TestCommand_NothingAvailable(t *testing.T) {
	o := newTestOpener(nil)
	_, err := o.Command(writeFile(t, "photo.png"))
	assert.Error(t, err)
}

func TestCommand_MissingFile(t *testing.T) {
	o := newTestOpener(map[string]string{"EDITOR": "hx"})
	_, err := o.Command(filepath.Join(t.TempDir(), "gone.txt"))
	assert.ErrorContains(t, err, "stored file unavailable")
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText("/a/B.TXT"))
	assert.True(t, IsText("x.json"))
	assert.False(t, IsText("x.png"))
	assert.False(t, IsText("Makefile"))
}
