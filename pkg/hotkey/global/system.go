// Package global listens for desktop-wide hotkeys.
//
// On Linux it needs an X11 display at init, so binaries built for
// headless hosts leave it out.
package global

import (
	"fmt"
	"sync"

	"github.com/screenkit/screenkit/pkg/hotkey"
	xhotkey "golang.design/x/hotkey"
)

// System listens for global hotkeys of the desktop session,
// so they work while another window has focus.
// Only key presses are reported.
type System struct {
	mu   sync.Mutex
	keys []*xhotkey.Hotkey
	stop chan struct{}
	wg   sync.WaitGroup
}

var _ hotkey.Source = (*System)(nil)

func NewSystem() *System { return &System{} }

var modOrder = []hotkey.Mod{hotkey.ModCtrl, hotkey.ModShift, hotkey.ModAlt, hotkey.ModSuper}

var systemKeys = map[string]xhotkey.Key{
	"space": xhotkey.KeySpace, "esc": xhotkey.KeyEscape, "enter": xhotkey.KeyReturn,
	"tab": xhotkey.KeyTab, "delete": xhotkey.KeyDelete,
	"a": xhotkey.KeyA, "b": xhotkey.KeyB, "c": xhotkey.KeyC, "d": xhotkey.KeyD, "e": xhotkey.KeyE,
	"f": xhotkey.KeyF, "g": xhotkey.KeyG, "h": xhotkey.KeyH, "i": xhotkey.KeyI, "j": xhotkey.KeyJ,
	"k": xhotkey.KeyK, "l": xhotkey.KeyL, "m": xhotkey.KeyM, "n": xhotkey.KeyN, "o": xhotkey.KeyO,
	"p": xhotkey.KeyP, "q": xhotkey.KeyQ, "r": xhotkey.KeyR, "s": xhotkey.KeyS, "t": xhotkey.KeyT,
	"u": xhotkey.KeyU, "v": xhotkey.KeyV, "w": xhotkey.KeyW, "x": xhotkey.KeyX, "y": xhotkey.KeyY,
	"z": xhotkey.KeyZ,
	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3, "4": xhotkey.Key4,
	"5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7, "8": xhotkey.Key8, "9": xhotkey.Key9,
	"f1": xhotkey.KeyF1, "f2": xhotkey.KeyF2, "f3": xhotkey.KeyF3, "f4": xhotkey.KeyF4,
	"f5": xhotkey.KeyF5, "f6": xhotkey.KeyF6, "f7": xhotkey.KeyF7, "f8": xhotkey.KeyF8,
	"f9": xhotkey.KeyF9, "f10": xhotkey.KeyF10, "f11": xhotkey.KeyF11, "f12": xhotkey.KeyF12,
}

func toSystem(c hotkey.Chord) ([]xhotkey.Modifier, xhotkey.Key, error) {
	key, ok := systemKeys[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v", hotkey.ErrBadChord, c)
	}
	var mods []xhotkey.Modifier
	for _, m := range modOrder {
		if c.Mods&m != 0 {
			mods = append(mods, systemMods[m])
		}
	}
	return mods, key, nil
}

func (s *System) Open(chords []hotkey.Chord) (<-chan hotkey.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(chan hotkey.Chord, len(chords))
	s.stop = make(chan struct{})
	for _, c := range chords {
		mods, key, err := toSystem(c)
		if err != nil {
			s.unregister()
			return nil, err
		}
		hk := xhotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			s.unregister()
			return nil, fmt.Errorf("register %v: %w", c, err)
		}
		s.keys = append(s.keys, hk)
		s.wg.Add(1)
		go s.forward(c, hk, out, s.stop)
	}
	return out, nil
}

func (s *System) forward(c hotkey.Chord, hk *xhotkey.Hotkey, out chan<- hotkey.Chord, stop <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-stop:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			select {
			case out <- c:
			case <-stop:
				return
			}
		}
	}
}

func (s *System) unregister() (err error) {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	for _, hk := range s.keys {
		if e := hk.Unregister(); e != nil && err == nil {
			err = e
		}
	}
	s.keys = nil
	return err
}

func (s *System) Close() error {
	s.mu.Lock()
	err := s.unregister()
	s.mu.Unlock()
	s.wg.Wait()
	return err
}
