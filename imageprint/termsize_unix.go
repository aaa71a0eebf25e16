//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package imageprint

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

// TermSize returns the size of the terminal p draws to, in cells and, where
// the terminal reports it, in pixels. It fails when p.W is not a terminal.
func (p *Printer) TermSize() (TermSize, error) {
	fd, ok := p.terminalFd()
	if !ok {
		return TermSize{}, errNotTerminal
	}
	sz, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err == nil {
		// Kitty reports pixels here; most other terminals leave them 0.
		return TermSize{Cols: uint(sz.Col), Rows: uint(sz.Row), XPixel: uint(sz.Xpixel), YPixel: uint(sz.Ypixel)}, nil
	}
	w, h, err2 := terminal.GetSize(fd)
	if err2 != nil {
		return TermSize{}, errors.Wrap(err, "querying terminal size")
	}
	return TermSize{Cols: uint(w), Rows: uint(h)}, nil
}
