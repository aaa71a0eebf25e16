package imageprint

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

var errNotTerminal = errors.New("imageprint: output is not a terminal")

// terminalFd returns the file descriptor behind p.W and whether it is a
// terminal.
func (p *Printer) terminalFd() (int, bool) {
	f, ok := p.W.(*os.File)
	if !ok {
		return -1, false
	}
	fd := int(f.Fd())
	return fd, terminal.IsTerminal(fd)
}
