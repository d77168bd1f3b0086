package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/screenkit/screenkit/pkg/media"
)

// Screen captures a physical display.
type Screen struct {
	Display int
}

func NewScreen(display int) *Screen { return &Screen{Display: display} }

func (s *Screen) Bounds() (media.Rect, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return media.Rect{}, fmt.Errorf("%w: no active displays", ErrUnavailable)
	}
	if s.Display < 0 || s.Display >= n {
		return media.Rect{}, fmt.Errorf("%w: display %v is out of range [0, %v)", ErrUnavailable, s.Display, n)
	}
	return media.FromImage(screenshot.GetDisplayBounds(s.Display)), nil
}

func (s *Screen) Capture(r media.Rect) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(r.Image())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return img, nil
}

// Displays lists bounds of all active displays.
func Displays() []media.Rect {
	n := screenshot.NumActiveDisplays()
	out := make([]media.Rect, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, media.FromImage(screenshot.GetDisplayBounds(i)))
	}
	return out
}
