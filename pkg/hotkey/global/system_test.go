package global

import (
	"testing"

	"github.com/screenkit/screenkit/pkg/hotkey"
)

func TestSystemChords(t *testing.T) {
	for _, s := range []string{"ctrl+esc", "ctrl+shift+r", "alt+f12", "super+space", "ctrl+0"} {
		c, err := hotkey.ParseChord(s)
		if err != nil {
			t.Fatal(err)
		}
		mods, _, err := toSystem(c)
		if err != nil {
			t.Errorf("%v: %v", s, err)
		}
		if len(mods) == 0 {
			t.Errorf("%v: no modifiers", s)
		}
	}
}
