package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/screenkit/screenkit/pkg/config"
	"github.com/screenkit/screenkit/pkg/recorder"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		st   recorder.Status
		want string
	}{
		{st: recorder.Status{State: recorder.Idle}, want: "IDLE"},
		{st: recorder.Status{State: recorder.Recording, Starting: 3 * time.Second}, want: "RECORDING starts in 3s"},
		{
			st:   recorder.Status{State: recorder.Paused, Elapsed: 61 * time.Second, FramesCaptured: 10, FramesEncoded: 9, FramesDropped: 1},
			want: "PAUSED 00:01:01.000 frames 9/10 dropped 1",
		},
	}
	for _, test := range tests {
		if got := statusLine(test.st); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, recorder.Result{Empty: true})
	if !strings.Contains(buf.String(), "nothing saved") {
		t.Errorf("empty recording: %q", buf.String())
	}
	buf.Reset()
	printResult(&buf, recorder.Result{Output: "a.mp4", Err: errors.New("boom"), FramesEncoded: 3})
	if out := buf.String(); !strings.Contains(out, "boom") || !strings.Contains(out, "a.mp4") {
		t.Errorf("failed recording: %q", out)
	}
}

func TestPrintSettings(t *testing.T) {
	conf, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := conf.RecorderOptions()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printSettings(&buf, conf, opts)
	for _, s := range []string{"output", "full display", "drop-newest", "ctrl+shift+r"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("no %q in %q", s, buf.String())
		}
	}
}
