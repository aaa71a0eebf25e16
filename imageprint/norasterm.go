//go:build !go1.13 || windows
// +build !go1.13 windows

package imageprint

import (
	"image"

	"github.com/pkg/errors"
)

func (p *Printer) printRasTerm(i image.Image) error {
	return errors.New("rasterm not supported below Go 1.13 or on windows")
}
