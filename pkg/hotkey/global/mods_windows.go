package global

import (
	"github.com/screenkit/screenkit/pkg/hotkey"
	xhotkey "golang.design/x/hotkey"
)

var systemMods = map[hotkey.Mod]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModAlt:   xhotkey.ModAlt,
	hotkey.ModSuper: xhotkey.ModWin,
}
