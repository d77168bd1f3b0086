package media

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Rect is a capture rectangle in display coordinates.
type Rect struct {
	X int
	Y int
	W int
	H int
}

var ErrBadRect = errors.New("bad rectangle")

func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func (r Rect) Image() image.Rectangle { return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H) }
func (r Rect) Size() image.Point      { return image.Pt(r.W, r.H) }
func (r Rect) IsZero() bool           { return r == Rect{} }

// Within checks that r has a positive size and fits into bounds.
func (r Rect) Within(bounds Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: non-positive size %vx%v", ErrBadRect, r.W, r.H)
	}
	if !r.Image().In(bounds.Image()) {
		return fmt.Errorf("%w: %v is outside of the display %v", ErrBadRect, r, bounds)
	}
	return nil
}

func (r Rect) String() string { return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H) }

// ParseRect reads x,y,width,height.
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("%w: [%v], expected x,y,width,height", ErrBadRect, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("%w: [%v], %v", ErrBadRect, s, err)
		}
		v[i] = n
	}
	return Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
