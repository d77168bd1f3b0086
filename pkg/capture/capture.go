// Package capture grabs screen images.
package capture

import (
	"errors"
	"image"

	"github.com/screenkit/screenkit/pkg/media"
)

// ErrUnavailable means that the display can't be read,
// e.g. there is no display or no permission to record it.
var ErrUnavailable = errors.New("capture unavailable")

// Source produces one RGBA image of the given rectangle per call.
type Source interface {
	// Bounds returns the rectangle of the whole display.
	Bounds() (media.Rect, error)
	Capture(r media.Rect) (*image.RGBA, error)
}
