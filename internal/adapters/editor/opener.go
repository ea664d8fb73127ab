package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// textExtensions open in the terminal editor, everything else in the desktop viewer
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".yaml": true, ".yml": true,
	".go": true, ".csv": true, ".log": true, ".toml": true, ".xml": true,
	".html": true, ".rtf": true, ".sh": true, ".py": true, ".js": true,
}

// Opener opens stored history files
type Opener struct {
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// NewOpener creates a new opener
func NewOpener() *Opener {
	return &Opener{lookPath: exec.LookPath, getenv: os.Getenv}
}

// OpenFile opens a stored file and waits for the program to exit
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file; text files go to the
// editor so bubbletea can hand over the terminal with ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stored file unavailable: %w", err)
	}

	program := ""
	if IsText(path) {
		program = o.findEditor()
	}
	if program == "" {
		program = o.findViewer()
	}
	if program == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(program, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// IsText reports whether path looks like a text file by extension
func IsText(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}

	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}
	return ""
}

// findViewer returns the desktop opener for the platform
func (o *Opener) findViewer() string {
	candidates := []string{"xdg-open"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"open"}
	}
	for _, c := range candidates {
		if path, err := o.lookPath(c); err == nil {
			return path
		}
	}
	return ""
}
