// Package encoder turns a sequence of RGBA frames into a video artifact.
//
// Every written frame lasts exactly 1/fps in the output,
// capture timestamps are never used for output timing.
package encoder

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"
)

var (
	ErrClosed    = errors.New("stream is closed")
	ErrFrameSize = errors.New("frame size mismatch")
)

// Stream is an open output container.
// Close must be safe to call more than once and after a failed Write.
type Stream interface {
	Write(img *image.RGBA) error
	Close() error
	// Discard closes the stream and removes everything it has written.
	Discard() error
	// Path of the artifact.
	Path() string
}

// Opener creates output streams.
type Opener interface {
	Open(path string, fps int, size image.Point) (Stream, error)
}

type OpenerFunc func(path string, fps int, size image.Point) (Stream, error)

func (f OpenerFunc) Open(path string, fps int, size image.Point) (Stream, error) {
	return f(path, fps, size)
}

// Interval returns the duration of a single output frame.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

func checkSize(img *image.RGBA, size image.Point) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrFrameSize)
	}
	if got := img.Bounds().Size(); got != size {
		return fmt.Errorf("%w: %v != %v", ErrFrameSize, got, size)
	}
	return nil
}

// writeRGBA writes tightly packed RGBA rows of the image.
func writeRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	row := b.Dx() * 4
	if img.Stride == row {
		start := img.PixOffset(b.Min.X, b.Min.Y)
		_, err := w.Write(img.Pix[start : start+row*b.Dy()])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[i : i+row]); err != nil {
			return err
		}
	}
	return nil
}
