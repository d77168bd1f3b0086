package media

import (
	"image"
	"time"
)

// Frame is a single captured screen image.
//
// A frame has exactly one owner at a time: the capture loop until it is
// pushed into a buffer, the buffer until it is popped, then the encoder.
type Frame struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Seq        uint64
}

func (f Frame) Size() image.Point {
	if f.Image == nil {
		return image.Point{}
	}
	return f.Image.Bounds().Size()
}
