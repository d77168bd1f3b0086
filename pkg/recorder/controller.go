// Package recorder runs recording sessions: a capture worker feeds
// a bounded frame buffer which an encode worker drains into the output.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/screenkit/screenkit/pkg/buffer"
	"github.com/screenkit/screenkit/pkg/capture"
	"github.com/screenkit/screenkit/pkg/encoder"
	"github.com/screenkit/screenkit/pkg/logger"
)

// Controller is the recording state machine.
// All transitions are serialized, so commands may come from any goroutine.
type Controller struct {
	mu    sync.Mutex
	state State
	opts  Options
	s     *session

	src capture.Source
	enc encoder.Opener
	log *logger.Logger

	now      func() time.Time
	metrics  *Metrics
	hooksMu  sync.Mutex
	onFinish []func(Result)
}

// Result is the outcome of a finished session.
type Result struct {
	Session string
	// Output is the artifact path, empty if nothing was written.
	Output  string
	Report  string
	Elapsed time.Duration

	FramesCaptured uint64
	FramesDropped  uint64
	FramesEncoded  uint64

	// Empty is an intentional recording without frames.
	Empty bool
	Err   error
}

func New(opts Options, src capture.Source, enc encoder.Opener, log *logger.Logger, options ...Option) *Controller {
	c := &Controller{
		opts: opts,
		src:  src,
		enc:  enc,
		log:  log.Module("recorder"),
		now:  time.Now,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// OnFinish adds a function called after every session is finalized.
func (c *Controller) OnFinish(fn func(Result)) {
	c.hooksMu.Lock()
	c.onFinish = append(c.onFinish, fn)
	c.hooksMu.Unlock()
}

// Reconfigure replaces options of the next sessions.
func (c *Controller) Reconfigure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
	c.log.Info().Msg("Options have been updated")
	return nil
}

func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.state, CmdStart)
	if err != nil {
		return err
	}

	opts := c.opts
	if err := opts.Validate(); err != nil {
		return err
	}
	bounds, err := c.src.Bounds()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	rect := opts.Rect
	if rect.IsZero() {
		rect = bounds
	} else if err := rect.Within(bounds); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	id := uuid.Must(uuid.NewV4()).String()
	now := c.now()
	out := parseName(opts.Output, now, id)

	stream, err := c.enc.Open(out, opts.Fps, rect.Size())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoderFailure, err)
	}
	if opts.Overlay {
		stream = encoder.WithOverlay(stream, opts.Fps)
	}

	s := &session{
		id:         id,
		output:     out,
		fps:        opts.Fps,
		rect:       rect,
		opts:       opts,
		buf:        buffer.New(opts.Buffer),
		stream:     stream,
		startedAt:  now.Add(opts.Countdown),
		encodeDone: make(chan struct{}),
		finished:   make(chan struct{}),
	}
	c.s = s
	c.state = next
	c.metrics.setState(next)

	go c.encode(s)
	c.startCapture(s, time.Now().Add(opts.Countdown))

	c.log.Info().Str("session", id).Str("output", out).Str("rect", rect.String()).
		Int("fps", opts.Fps).Str("policy", opts.Buffer.Policy.String()).Msg("Recording has started")
	return nil
}

// Pause stops the capture worker, the encoder keeps draining the buffer.
// It returns after the worker has exited, without blocking status reads.
// A pause during the countdown cancels the rest of it.
func (c *Controller) Pause() error {
	c.mu.Lock()
	next, err := Transition(c.state, CmdPause)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	s := c.s
	cancel, done := s.detachCapture()
	if cancel != nil {
		cancel()
	}
	s.lastCapture = done
	now := c.now()
	if now.Before(s.startedAt) {
		s.startedAt = now
	}
	s.paused = true
	s.pausedAt = now
	c.state = next
	c.metrics.setState(next)
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.log.Info().Str("session", s.id).Msg("Recording has been paused")
	return nil
}

func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.state, CmdResume)
	if err != nil {
		return err
	}
	s := c.s
	s.pausedAccum += c.now().Sub(s.pausedAt)
	s.paused = false
	s.pausedAt = time.Time{}
	c.startCapture(s, time.Now())
	c.state = next
	c.metrics.setState(next)
	c.log.Info().Str("session", s.id).Msg("Recording has been resumed")
	return nil
}

// Stop finalizes the current session and waits until it is done.
// The error of the result is returned as well.
func (c *Controller) Stop() (Result, error) {
	c.mu.Lock()
	next, err := Transition(c.state, CmdStop)
	if err != nil {
		c.mu.Unlock()
		return Result{}, err
	}
	s := c.s
	c.toStopping(s, next)
	cancel, done := s.detachCapture()
	c.mu.Unlock()

	c.finalize(s, cancel, done)
	return s.result, s.result.Err
}

// Handle applies a command.
func (c *Controller) Handle(cmd Command) error {
	switch cmd {
	case CmdStart:
		return c.Start()
	case CmdPause:
		return c.Pause()
	case CmdResume:
		return c.Resume()
	case CmdStop:
		_, err := c.Stop()
		// a failed recording is reported with the result
		if err != nil && errors.Is(err, ErrInvalidTransition) {
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: unknown command %v", ErrInvalidTransition, cmd)
}

// Run handles commands one by one until the context is done or the channel is closed.
func (c *Controller) Run(ctx context.Context, commands <-chan Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			if err := c.Handle(cmd); err != nil {
				c.log.Warn().Err(err).Str("cmd", cmd.String()).Msg("Command rejected")
			}
		}
	}
}

// Done returns a channel closed when the current session is finalized
// and its OnFinish hooks have returned.
// It is already closed without a session.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.s.finished
}

// Shutdown stops an active session and waits for the finalization.
func (c *Controller) Shutdown(ctx context.Context) error {
	var err error
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state == Recording || state == Paused {
		if _, err = c.Stop(); errors.Is(err, ErrFinalizing) {
			err = nil
		}
	}
	select {
	case <-c.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (c *Controller) toStopping(s *session, next State) {
	c.state = next
	s.stoppedAt = c.now()
	c.metrics.setState(next)
}

// fail aborts the session after a worker failure.
func (c *Controller) fail(s *session, err error) {
	c.mu.Lock()
	if c.s != s || (c.state != Recording && c.state != Paused) {
		c.mu.Unlock()
		return
	}
	c.toStopping(s, Stopping)
	s.failure = err
	cancel, done := s.detachCapture()
	c.mu.Unlock()

	c.log.Error().Err(err).Str("session", s.id).Msg("Recording has failed")
	c.finalize(s, cancel, done)
}

// finalize stops the workers, waits for the encoder to drain the buffer
// and close the output, then moves the controller into Idle.
func (c *Controller) finalize(s *session, cancel context.CancelFunc, captureDone chan struct{}) {
	stopWorker(cancel, captureDone)
	c.mu.Lock()
	paused := s.lastCapture
	c.mu.Unlock()
	if paused != nil {
		<-paused
	}
	s.buf.Close()
	<-s.encodeDone

	st := s.buf.Stats()
	c.metrics.dropped(st.Dropped)

	var errs *multierror.Error
	if err := s.getCaptureErr(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if s.encodeErr != nil {
		errs = multierror.Append(errs, s.encodeErr)
	}
	if s.closeErr != nil {
		errs = multierror.Append(errs, s.closeErr)
	}

	c.mu.Lock()
	res := Result{
		Session:        s.id,
		Output:         s.artifact,
		Elapsed:        s.elapsed(c.now()),
		FramesCaptured: s.captured.Load(),
		FramesDropped:  st.Dropped,
		FramesEncoded:  s.encoded.Load(),
	}
	c.mu.Unlock()

	if res.FramesEncoded == 0 {
		if errs.ErrorOrNil() != nil {
			errs = multierror.Append(errs, ErrNoFrames)
		} else {
			res.Empty = true
		}
	}
	res.Err = errs.ErrorOrNil()

	if s.opts.Report && res.Output != "" {
		path, err := writeReport(s, res)
		if err != nil {
			c.log.Warn().Err(err).Msg("Couldn't write the report")
		} else {
			res.Report = path
		}
	}

	c.mu.Lock()
	s.result = res
	if res.Err != nil {
		s.failure = res.Err
	}
	c.state = Idle
	c.metrics.setState(Idle)
	c.mu.Unlock()
	c.metrics.finished(res)

	ev := c.log.Info()
	if res.Err != nil {
		ev = c.log.Error().Err(res.Err)
	}
	ev.Str("session", s.id).Str("output", res.Output).Dur("elapsed", res.Elapsed).
		Uint64("captured", res.FramesCaptured).Uint64("dropped", res.FramesDropped).
		Uint64("encoded", res.FramesEncoded).Bool("empty", res.Empty).Msg("Recording has finished")

	c.hooksMu.Lock()
	hooks := append([]func(Result){}, c.onFinish...)
	c.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(res)
	}
	close(s.finished)
}
