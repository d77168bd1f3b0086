package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/screenkit/screenkit/pkg/media"
)

// Synthetic is a display-less source that draws a moving test pattern.
// It is used for headless runs and tests.
type Synthetic struct {
	W, H int
	// FailAfter makes Capture fail with ErrUnavailable
	// after that many successful grabs; zero means never.
	FailAfter int

	mu sync.Mutex
	n  int
}

func NewSynthetic(w, h int) *Synthetic { return &Synthetic{W: w, H: h} }

func (s *Synthetic) Bounds() (media.Rect, error) { return media.Rect{W: s.W, H: s.H}, nil }

func (s *Synthetic) Capture(r media.Rect) (*image.RGBA, error) {
	s.mu.Lock()
	if s.FailAfter > 0 && s.n >= s.FailAfter {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: synthetic display is gone after %v frames", ErrUnavailable, s.n)
	}
	n := s.n
	s.n++
	s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	bar := 0
	if r.W > 0 {
		bar = (n * 8) % r.W
	}
	c := color.RGBA{R: uint8(n), G: 64, B: 128, A: 255}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if x >= bar && x < bar+8 {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// Grabs returns the number of successful captures.
func (s *Synthetic) Grabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
