package hotkey

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/screenkit/screenkit/pkg/logger"
	"github.com/screenkit/screenkit/pkg/recorder"
)

// Source delivers pressed chords in the order of key events.
type Source interface {
	Open(chords []Chord) (<-chan Chord, error)
	Close() error
}

// Listener translates chords of a key source into recorder commands.
// It knows nothing about the recording state, so rejecting
// a command is up to the receiver.
type Listener struct {
	src      Source
	bindings map[Chord]recorder.Command
	chords   []Chord
	log      *logger.Logger

	out  chan recorder.Command
	stop chan struct{}
	done chan struct{}
	once sync.Once
	// done is closed only after a start
	started atomic.Bool
}

func NewListener(src Source, bindings []Binding, log *logger.Logger) (*Listener, error) {
	l := &Listener{
		src:      src,
		bindings: make(map[Chord]recorder.Command, len(bindings)),
		log:      log.Module("hotkey"),
		out:      make(chan recorder.Command, 16),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, b := range bindings {
		if cmd, ok := l.bindings[b.Chord]; ok {
			return nil, fmt.Errorf("%w: %v is bound to both %v and %v", ErrBadChord, b.Chord, cmd, b.Command)
		}
		l.bindings[b.Chord] = b.Command
		l.chords = append(l.chords, b.Chord)
	}
	return l, nil
}

// Commands is the channel of translated commands,
// it is closed after Shutdown.
func (l *Listener) Commands() <-chan recorder.Command { return l.out }

// Start opens the key source and begins the translation.
func (l *Listener) Start() error {
	keys, err := l.src.Open(l.chords)
	if err != nil {
		return err
	}
	for _, c := range l.chords {
		l.log.Info().Msgf("%v: %v", l.bindings[c], c)
	}
	l.started.Store(true)
	go l.forward(keys)
	return nil
}

// Run is Start that logs its error.
func (l *Listener) Run() {
	if err := l.Start(); err != nil {
		l.log.Error().Err(err).Msg("Hotkeys are not available")
		l.once.Do(func() { close(l.stop) })
		close(l.out)
		close(l.done)
		l.started.Store(true)
	}
}

func (l *Listener) forward(keys <-chan Chord) {
	defer close(l.done)
	defer close(l.out)
	for {
		select {
		case <-l.stop:
			return
		case c, ok := <-keys:
			if !ok {
				return
			}
			cmd, ok := l.bindings[c]
			if !ok {
				continue
			}
			l.log.Debug().Str("chord", c.String()).Str("cmd", cmd.String()).Msg("key")
			select {
			case l.out <- cmd:
			case <-l.stop:
				return
			}
		}
	}
}

func (l *Listener) Shutdown(ctx context.Context) error {
	l.once.Do(func() { close(l.stop) })
	err := l.src.Close()
	if !l.started.Load() {
		return err
	}
	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (l *Listener) String() string { return "hotkey listener" }
