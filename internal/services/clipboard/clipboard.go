// Package clipboard mirrors rendered output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	systemclipboard "github.com/atotto/clipboard"
)

// ErrUnsupported reports that no clipboard utility (pbcopy, xclip, xsel,
// wl-copy, clip.exe) was found.
var ErrUnsupported = errors.New("system clipboard is not available")

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(text string) error

// Copy calls function(text).
func (function CopierFunc) Copy(text string) error {
	return function(text)
}

// System writes to the operating system clipboard.
type System struct {
	unsupported bool
	write       func(string) error
}

// NewService returns a Copier backed by the operating system clipboard.
func NewService() *System {
	return &System{unsupported: systemclipboard.Unsupported, write: systemclipboard.WriteAll}
}

// Copy writes text to the clipboard.
func (system *System) Copy(text string) error {
	if system.unsupported {
		return ErrUnsupported
	}
	if err := system.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

var (
	_ Copier = (*System)(nil)
	_ Copier = CopierFunc(nil)
)
