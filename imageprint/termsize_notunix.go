//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package imageprint

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// TermSize returns the size of the terminal p draws to, in cells. It fails
// when p.W is not a terminal.
func (p *Printer) TermSize() (TermSize, error) {
	fd, ok := p.terminalFd()
	if !ok {
		return TermSize{}, errNotTerminal
	}
	w, h, err := terminal.GetSize(fd)
	if err != nil {
		return TermSize{}, errors.Wrap(err, "querying terminal size")
	}
	return TermSize{Cols: uint(w), Rows: uint(h)}, nil
}
