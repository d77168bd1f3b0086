//go:build headless

package main

import (
	"testing"

	"github.com/screenkit/screenkit/pkg/config"
	"github.com/screenkit/screenkit/pkg/logger"
)

func TestHeadlessHotkeys(t *testing.T) {
	var conf config.Config
	if err := config.LoadEnv(&conf); err != nil {
		t.Fatal(err)
	}
	conf.Hotkeys.Source = "terminal"
	if _, err := newListener(conf.Hotkeys, func() {}, logger.Nop()); err != nil {
		t.Errorf("terminal hotkeys: %v", err)
	}
	conf.Hotkeys.Source = "system"
	if _, err := newListener(conf.Hotkeys, func() {}, logger.Nop()); err == nil {
		t.Error("system hotkeys should fail without the desktop library")
	}
}
