package recorder

import (
	"fmt"
	"time"

	"github.com/screenkit/screenkit/pkg/buffer"
	"github.com/screenkit/screenkit/pkg/media"
)

const DefaultFps = 15

type Options struct {
	// Output is a name template of the output file, see parseName.
	Output string
	Fps    int
	// Rect is the captured area, the whole display if zero.
	Rect   media.Rect
	Buffer buffer.Options
	// Overlay stamps output time into frames.
	Overlay bool
	// Report writes a yaml sidecar next to the output.
	Report bool
	// Countdown delays the first frame of a session.
	Countdown time.Duration
}

func (o Options) Validate() error {
	if o.Output == "" {
		return fmt.Errorf("%w: empty output path", ErrConfiguration)
	}
	if o.Fps <= 0 {
		return fmt.Errorf("%w: fps should be positive, got %v", ErrConfiguration, o.Fps)
	}
	if o.Buffer.Capacity < 0 {
		return fmt.Errorf("%w: negative buffer capacity %v", ErrConfiguration, o.Buffer.Capacity)
	}
	if o.Countdown < 0 {
		return fmt.Errorf("%w: negative countdown", ErrConfiguration)
	}
	if !o.Rect.IsZero() && (o.Rect.W <= 0 || o.Rect.H <= 0) {
		return fmt.Errorf("%w: bad capture rectangle %v", ErrConfiguration, o.Rect)
	}
	return nil
}

// Option configures the controller itself.
type Option func(*Controller)

// WithClock replaces the wall clock used for elapsed time.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithMetrics(m *Metrics) Option { return func(c *Controller) { c.metrics = m } }
