package recorder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/screenkit/screenkit/pkg/buffer"
	"github.com/screenkit/screenkit/pkg/encoder"
	"github.com/screenkit/screenkit/pkg/media"
)

// session is a single recording from start to stop.
// Timing fields are guarded by the controller's mutex.
type session struct {
	id     string
	output string
	fps    int
	rect   media.Rect
	opts   Options

	buf    *buffer.Buffer
	stream encoder.Stream

	startedAt   time.Time
	pausedAt    time.Time
	stoppedAt   time.Time
	pausedAccum time.Duration
	paused      bool

	// the running capture worker
	cancel      context.CancelFunc
	captureDone chan struct{}
	// a paused worker that may still be finishing its last grab
	lastCapture chan struct{}

	encodeDone chan struct{}
	finished   chan struct{}

	seq      atomic.Uint64
	captured atomic.Uint64
	encoded  atomic.Uint64

	errMu      sync.Mutex
	captureErr error
	// set by the encode worker before encodeDone is closed
	encodeErr error
	closeErr  error
	artifact  string

	failure error
	result  Result
}

func (s *session) elapsed(now time.Time) time.Duration {
	end := now
	if !s.stoppedAt.IsZero() {
		end = s.stoppedAt
	}
	paused := s.pausedAccum
	if s.paused {
		paused += end.Sub(s.pausedAt)
	}
	d := end.Sub(s.startedAt) - paused
	if d < 0 {
		return 0
	}
	return d
}

func (s *session) setCaptureErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.captureErr == nil {
		s.captureErr = err
	}
}

func (s *session) getCaptureErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.captureErr
}

// detachCapture takes the running capture worker out of the session.
func (s *session) detachCapture() (context.CancelFunc, chan struct{}) {
	cancel, done := s.cancel, s.captureDone
	s.cancel, s.captureDone = nil, nil
	return cancel, done
}

func stopWorker(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// startCapture launches a capture worker with frames scheduled from anchor.
func (c *Controller) startCapture(s *session, anchor time.Time) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	prev := s.lastCapture
	s.cancel, s.captureDone, s.lastCapture = cancel, done, nil
	go c.capture(ctx, s, anchor, prev, done)
}

// capture grabs frames at absolute deadlines anchor + n/fps
// and pushes them into the session buffer until cancelled.
// A lagging worker skips the missed slots instead of bursting.
// It starts only after the previous worker prev has exited.
func (c *Controller) capture(ctx context.Context, s *session, anchor time.Time, prev, done chan struct{}) {
	var err error
	defer func() {
		if err != nil {
			s.setCaptureErr(err)
		}
		close(done)
		if err != nil {
			go c.fail(s, err)
		}
	}()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	interval := encoder.Interval(s.fps)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for n := int64(0); ; n++ {
		deadline := anchor.Add(time.Duration(n) * interval)
		wait := time.Until(deadline)
		if wait < -interval {
			n += int64(-wait / interval)
			deadline = anchor.Add(time.Duration(n) * interval)
			wait = time.Until(deadline)
		}
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}

		img, cerr := c.src.Capture(s.rect)
		if ctx.Err() != nil {
			return
		}
		if cerr != nil {
			err = fmt.Errorf("%w: %w", ErrCaptureUnavailable, cerr)
			return
		}
		s.captured.Add(1)
		c.metrics.captured()
		s.buf.Push(media.Frame{Image: img, CapturedAt: time.Now(), Seq: s.seq.Add(1)})
	}
}

// encode writes frames from the buffer until it is closed and drained.
// It owns the output stream and always closes it.
func (c *Controller) encode(s *session) {
	var err error
	for {
		f, ok := s.buf.Pop()
		if !ok {
			break
		}
		if werr := s.stream.Write(f.Image); werr != nil {
			s.buf.Close()
			err = fmt.Errorf("%w: %w", ErrEncoderFailure, werr)
			break
		}
		s.encoded.Add(1)
		c.metrics.encoded()
	}

	if s.encoded.Load() == 0 {
		if derr := s.stream.Discard(); derr != nil {
			s.closeErr = fmt.Errorf("%w: %w", ErrEncoderFailure, derr)
		}
	} else {
		if cerr := s.stream.Close(); cerr != nil {
			s.closeErr = fmt.Errorf("%w: %w", ErrEncoderFailure, cerr)
		}
		s.artifact = s.stream.Path()
	}
	s.encodeErr = err
	close(s.encodeDone)

	if err != nil {
		go c.fail(s, err)
	}
}
