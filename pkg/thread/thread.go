// Package thread runs the application on the main OS thread
// when the platform requires it.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

var isMacOs = runtime.GOOS == "darwin"

// MainWrapMaybe runs f while the main thread serves the system event loop,
// global hotkeys don't fire without it on macOS.
// Elsewhere f is called directly.
func MainWrapMaybe(f func()) {
	if isMacOs {
		mainthread.Init(f)
	} else {
		f()
	}
}
