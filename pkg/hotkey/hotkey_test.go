package hotkey

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/screenkit/screenkit/pkg/logger"
	"github.com/screenkit/screenkit/pkg/recorder"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		want Chord
		err  bool
	}{
		{in: "ctrl+esc", want: Chord{Mods: ModCtrl, Key: "esc"}},
		{in: "Ctrl+Shift+R", want: Chord{Mods: ModCtrl | ModShift, Key: "r"}},
		{in: "alt + f9", want: Chord{Mods: ModAlt, Key: "f9"}},
		{in: "cmd+option+escape", want: Chord{Mods: ModSuper | ModAlt, Key: "esc"}},
		{in: "space", want: Chord{Key: "space"}},
		{in: "5", want: Chord{Key: "5"}},
		{in: "ctrl+", err: true},
		{in: "hyper+r", err: true},
		{in: "ctrl+f13", err: true},
		{in: "ctrl+f01", err: true},
		{in: "ctrl+home", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChord(tt.in)
			if tt.err {
				if !errors.Is(err, ErrBadChord) {
					t.Errorf("expected ErrBadChord, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseChord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChordString(t *testing.T) {
	c := Chord{Mods: ModSuper | ModCtrl | ModShift, Key: "r"}
	if c.String() != "ctrl+shift+super+r" {
		t.Errorf("wrong chord name %v", c)
	}
	back, err := ParseChord(c.String())
	if err != nil || back != c {
		t.Errorf("chord name doesn't parse back: %v %v", back, err)
	}
}

func TestBindings(t *testing.T) {
	bb, err := Bindings("ctrl+shift+r", "", "ctrl+shift+u", "ctrl+esc")
	if err != nil {
		t.Fatal(err)
	}
	if len(bb) != 3 {
		t.Fatalf("got %v bindings, want 3", len(bb))
	}
	if bb[2].Command != recorder.CmdStop || bb[2].Chord != (Chord{Mods: ModCtrl, Key: "esc"}) {
		t.Errorf("wrong stop binding %+v", bb[2])
	}
	if _, err := Bindings("ctrl+?", "", "", ""); !errors.Is(err, ErrBadChord) {
		t.Errorf("expected ErrBadChord, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	got := decode([]byte{'r', 'R', 3, 27, 27, '[', 'A', ' ', '\r', 127, '7', '?'})
	want := []Chord{
		{Key: "r"},
		{Mods: ModShift, Key: "r"},
		{Mods: ModCtrl, Key: "c"},
		{Key: "esc"},
		{Key: "space"},
		{Key: "enter"},
		{Key: "delete"},
		{Key: "7"},
	}
	if len(got) != len(want) {
		t.Fatalf("decode() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("#%v = %v, want %v", i, got[i], want[i])
		}
	}
}

type fakeSource struct {
	ch     chan Chord
	opened []Chord
	closed atomic.Bool
	err    error
}

func (f *fakeSource) Open(chords []Chord) (<-chan Chord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.opened = chords
	return f.ch, nil
}

func (f *fakeSource) Close() error { f.closed.Store(true); return nil }

func next(t *testing.T, ch <-chan recorder.Command) recorder.Command {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command")
	}
	return 0
}

func TestListener(t *testing.T) {
	bb, err := Bindings("r", "p", "u", "ctrl+esc")
	if err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{ch: make(chan Chord, 16)}
	l, err := NewListener(src, bb, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	if len(src.opened) != 4 {
		t.Errorf("registered %v chords", len(src.opened))
	}

	// presses in any recording state are forwarded as is
	for _, c := range []Chord{{Key: "r"}, {Key: "x"}, {Key: "r"}, {Key: "p"}, {Mods: ModCtrl, Key: "esc"}, {Key: "u"}} {
		src.ch <- c
	}
	want := []recorder.Command{recorder.CmdStart, recorder.CmdStart, recorder.CmdPause, recorder.CmdStop, recorder.CmdResume}
	for i, w := range want {
		if got := next(t, l.Commands()); got != w {
			t.Errorf("#%v = %v, want %v", i, got, w)
		}
	}
	select {
	case cmd := <-l.Commands():
		t.Errorf("unexpected %v", cmd)
	case <-time.After(20 * time.Millisecond):
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if !src.closed.Load() {
		t.Error("source is not closed")
	}
	if _, ok := <-l.Commands(); ok {
		t.Error("commands should be closed after shutdown")
	}
}

func TestListenerDuplicates(t *testing.T) {
	bb := []Binding{
		{Chord: Chord{Key: "p"}, Command: recorder.CmdPause},
		{Chord: Chord{Key: "p"}, Command: recorder.CmdResume},
	}
	if _, err := NewListener(&fakeSource{}, bb, logger.Nop()); !errors.Is(err, ErrBadChord) {
		t.Errorf("expected ErrBadChord, got %v", err)
	}
}

func TestListenerUnavailable(t *testing.T) {
	l, err := NewListener(&fakeSource{err: errors.New("no display")}, nil, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	l.Run()
	if _, ok := <-l.Commands(); ok {
		t.Error("commands should be closed")
	}
	if err := l.Shutdown(context.Background()); err != nil {
		t.Error(err)
	}
}

func TestTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	var interrupted atomic.Bool
	term := &Terminal{In: r, Interrupt: func() { interrupted.Store(true) }}
	keys, err := term.Open([]Chord{{Key: "q"}, {Mods: ModShift, Key: "p"}})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = term.Close() }()

	if _, err := w.Write([]byte("aqP\x03")); err != nil {
		t.Fatal(err)
	}
	for _, want := range []Chord{{Key: "q"}, {Mods: ModShift, Key: "p"}} {
		select {
		case got := <-keys:
			if got != want {
				t.Errorf("got %v, want %v", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("no key")
		}
	}
	deadline := time.Now().Add(time.Second)
	for !interrupted.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !interrupted.Load() {
		t.Error("ctrl+c hasn't interrupted")
	}
}

// The package must build on hosts without a display,
// the desktop hotkey library panics at init there.
func TestNoDisplayImports(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatal(err)
		}
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			if strings.HasPrefix(path, "golang.design/x/hotkey") {
				t.Errorf("%v imports %v", name, path)
			}
		}
	}
}
