package encoder

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WithOverlay stamps the output time of each frame into its top-left corner.
func WithOverlay(s Stream, fps int) Stream {
	return &overlay{Stream: s, interval: Interval(fps)}
}

type overlay struct {
	Stream

	interval time.Duration
	n        int
}

func (o *overlay) Write(img *image.RGBA) error {
	if img != nil {
		at := img.Bounds().Min
		AddLabel(img, at.X+4, at.Y+4, TimeFormat(time.Duration(o.n)*o.interval))
	}
	o.n++
	return o.Stream.Write(img)
}

func AddLabel(img *image.RGBA, x, y int, label string) {
	draw.Draw(img, image.Rect(x, y, x+len(label)*7+3, y+12), &image.Uniform{C: color.RGBA{A: 255}}, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.Int26_6((x + 2) * 64), Y: fixed.Int26_6((y + 10) * 64)},
	}).DrawString(label)
}

func TimeFormat(d time.Duration) string {
	mms := int(d.Milliseconds())
	ms := mms % 1000
	s := (mms / 1000) % 60
	m := (mms / (1000 * 60)) % 60
	h := mms / (1000 * 60 * 60)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
