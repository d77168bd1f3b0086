//go:build !headless

package main

import (
	"github.com/screenkit/screenkit/pkg/hotkey"
	"github.com/screenkit/screenkit/pkg/hotkey/global"
)

func systemHotkeys() (hotkey.Source, error) { return global.NewSystem(), nil }
