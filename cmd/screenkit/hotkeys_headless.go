//go:build headless

package main

import (
	"errors"

	"github.com/screenkit/screenkit/pkg/hotkey"
)

func systemHotkeys() (hotkey.Source, error) {
	return nil, errors.New("global hotkeys are not built in, use --hotkeys terminal")
}
