package os

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func CheckCreateDir(path string) error {
	if !Exists(path) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// CheckCreateParent makes sure that the directory of a file exists.
func CheckCreateParent(file string) error {
	dir := filepath.Dir(file)
	if dir == "" || dir == "." {
		return nil
	}
	return CheckCreateDir(dir)
}

// ExpectTermination returns a channel that fires on each SIGINT or SIGTERM
// until the context is cancelled.
func ExpectTermination(ctx context.Context) <-chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		signal.Stop(signals)
	}()
	return signals
}

func GetUserHome() (string, error) { return os.UserHomeDir() }
