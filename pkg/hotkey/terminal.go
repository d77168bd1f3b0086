package hotkey

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Terminal reads keys from a terminal in raw mode.
// It sees plain keys, shift+letter and ctrl+letter only,
// and only while the terminal has focus.
type Terminal struct {
	In *os.File
	// Interrupt is called on ctrl+c, raw mode
	// doesn't turn it into a signal.
	Interrupt func()

	mu    sync.Mutex
	state *term.State
	stop  chan struct{}
}

func NewTerminal(interrupt func()) *Terminal { return &Terminal{In: os.Stdin, Interrupt: interrupt} }

func (t *Terminal) Open(chords []Chord) (<-chan Chord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fd := int(t.In.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		t.state = state
	}
	t.stop = make(chan struct{})
	out := make(chan Chord, 8)
	go t.read(t.In, chords, out, t.stop)
	return out, nil
}

func (t *Terminal) read(r io.Reader, chords []Chord, out chan<- Chord, stop <-chan struct{}) {
	defer close(out)
	want := make(map[Chord]bool, len(chords))
	for _, c := range chords {
		want[c] = true
	}
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		for _, c := range decode(buf[:n]) {
			if c == ctrlC && t.Interrupt != nil && !want[c] {
				t.Interrupt()
				continue
			}
			if !want[c] {
				continue
			}
			select {
			case out <- c:
			case <-stop:
				return
			}
		}
	}
}

var ctrlC = Chord{Mods: ModCtrl, Key: "c"}

// decode converts raw terminal input into chords.
// Escape sequences (arrows, function keys) are skipped.
func decode(b []byte) (out []Chord) {
	for i := 0; i < len(b); i++ {
		ch := b[i]
		switch {
		case ch == 27:
			if i+1 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				// skip the sequence up to its final byte
				i += 2
				for i < len(b) && (b[i] < 0x40 || b[i] > 0x7e) {
					i++
				}
				continue
			}
			out = append(out, Chord{Key: "esc"})
		case ch == '\r' || ch == '\n':
			out = append(out, Chord{Key: "enter"})
		case ch == '\t':
			out = append(out, Chord{Key: "tab"})
		case ch == ' ':
			out = append(out, Chord{Key: "space"})
		case ch == 127:
			out = append(out, Chord{Key: "delete"})
		case ch >= 1 && ch <= 26:
			out = append(out, Chord{Mods: ModCtrl, Key: string(rune('a' + ch - 1))})
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			out = append(out, Chord{Key: string(rune(ch))})
		case ch >= 'A' && ch <= 'Z':
			out = append(out, Chord{Mods: ModShift, Key: string(rune(ch - 'A' + 'a'))})
		}
	}
	return out
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	if t.state == nil {
		return nil
	}
	err := term.Restore(int(t.In.Fd()), t.state)
	t.state = nil
	return err
}
