// Package hotkey turns key chords into recorder commands.
package hotkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/screenkit/screenkit/pkg/recorder"
)

var ErrBadChord = errors.New("bad key chord")

type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

var modNames = []struct {
	mod  Mod
	name string
}{
	{ModCtrl, "ctrl"},
	{ModShift, "shift"},
	{ModAlt, "alt"},
	{ModSuper, "super"},
}

var modAliases = map[string]Mod{
	"ctrl": ModCtrl, "control": ModCtrl,
	"shift": ModShift,
	"alt":   ModAlt, "option": ModAlt,
	"super": ModSuper, "cmd": ModSuper, "win": ModSuper, "meta": ModSuper,
}

var keyAliases = map[string]string{
	"escape": "esc",
	"return": "enter",
	"del":    "delete",
}

// Chord is a key with modifiers, e.g. ctrl+shift+r.
type Chord struct {
	Mods Mod
	Key  string
}

func (c Chord) String() string {
	var parts []string
	for _, m := range modNames {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, c.Key), "+")
}

func isKey(k string) bool {
	switch k {
	case "space", "esc", "enter", "tab", "delete":
		return true
	}
	if len(k) == 1 {
		return k[0] >= 'a' && k[0] <= 'z' || k[0] >= '0' && k[0] <= '9'
	}
	if len(k) >= 2 && len(k) <= 3 && k[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && fmt.Sprint(n) == k[1:] {
			return n >= 1 && n <= 12
		}
	}
	return false
}

// ParseChord reads chords like ctrl+shift+r or ctrl+esc.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(s, " ", "")), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Chord{}, fmt.Errorf("%w: [%v] has no key", ErrBadChord, s)
	}
	var c Chord
	for _, p := range parts[:len(parts)-1] {
		m, ok := modAliases[p]
		if !ok {
			return Chord{}, fmt.Errorf("%w: [%v] unknown modifier %v", ErrBadChord, s, p)
		}
		c.Mods |= m
	}
	key := parts[len(parts)-1]
	if k, ok := keyAliases[key]; ok {
		key = k
	}
	if !isKey(key) {
		return Chord{}, fmt.Errorf("%w: [%v] unknown key %v", ErrBadChord, s, key)
	}
	c.Key = key
	return c, nil
}

// Binding maps a chord to a command.
type Binding struct {
	Chord   Chord
	Command recorder.Command
}

// Bindings makes bindings from chord strings, empty chords are skipped.
func Bindings(start, pause, resume, stop string) ([]Binding, error) {
	var out []Binding
	for _, b := range []struct {
		chord string
		cmd   recorder.Command
	}{
		{start, recorder.CmdStart},
		{pause, recorder.CmdPause},
		{resume, recorder.CmdResume},
		{stop, recorder.CmdStop},
	} {
		if b.chord == "" {
			continue
		}
		c, err := ParseChord(b.chord)
		if err != nil {
			return nil, fmt.Errorf("%v hotkey: %w", b.cmd, err)
		}
		out = append(out, Binding{Chord: c, Command: b.cmd})
	}
	return out, nil
}
