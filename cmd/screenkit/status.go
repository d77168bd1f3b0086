package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/screenkit/screenkit/pkg/config"
	"github.com/screenkit/screenkit/pkg/encoder"
	"github.com/screenkit/screenkit/pkg/recorder"
	"golang.org/x/term"
)

const statusRefresh = 250 * time.Millisecond

func printSettings(w io.Writer, conf config.Config, opts recorder.Options) {
	region := "full display"
	if !opts.Rect.IsZero() {
		region = opts.Rect.String()
	}
	start, pause, resume, stop := conf.Hotkeys.Keys()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "output\t%v\n", opts.Output)
	_, _ = fmt.Fprintf(tw, "fps\t%v\n", opts.Fps)
	_, _ = fmt.Fprintf(tw, "region\t%v (display %v)\n", region, conf.Recorder.Display)
	_, _ = fmt.Fprintf(tw, "buffer\t%v, %v\n", opts.Buffer.Capacity, opts.Buffer.Policy)
	_, _ = fmt.Fprintf(tw, "encoder\t%v\n", conf.Recorder.Encoder.Type)
	if opts.Countdown > 0 {
		_, _ = fmt.Fprintf(tw, "countdown\t%v\n", opts.Countdown)
	}
	if conf.Hotkeys.Source != "none" {
		_, _ = fmt.Fprintf(tw, "hotkeys\tstart %v, pause %v, resume %v, stop %v (%v)\n",
			start, pause, resume, stop, conf.Hotkeys.Source)
	}
	_ = tw.Flush()
}

func printResult(w io.Writer, r recorder.Result) {
	switch {
	case r.Err != nil:
		_, _ = fmt.Fprintf(w, "\nRecording has failed: %v\n", r.Err)
	case r.Empty:
		_, _ = fmt.Fprintf(w, "\nRecording was stopped before the first frame, nothing saved\n")
		return
	}
	if r.Output != "" {
		_, _ = fmt.Fprintf(w, "\nSaved %v [%v, %v frames, %v dropped]\n",
			r.Output, encoder.TimeFormat(r.Elapsed), r.FramesEncoded, r.FramesDropped)
	}
}

func statusLine(st recorder.Status) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(st.State.String()))
	if st.Starting > 0 {
		_, _ = fmt.Fprintf(&b, " starts in %ds", int(st.Starting.Round(time.Second)/time.Second))
		return b.String()
	}
	if st.State == recorder.Idle {
		return b.String()
	}
	_, _ = fmt.Fprintf(&b, " %v frames %v/%v", encoder.TimeFormat(st.Elapsed), st.FramesEncoded, st.FramesCaptured)
	if st.FramesDropped > 0 {
		_, _ = fmt.Fprintf(&b, " dropped %v", st.FramesDropped)
	}
	return b.String()
}

// printStatus keeps a single status line updated on a terminal.
func printStatus(ctx context.Context, w io.Writer, ctrl *recorder.Controller) {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	t := time.NewTicker(statusRefresh)
	defer t.Stop()
	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			line := statusLine(ctrl.Status())
			if line == last {
				continue
			}
			_, _ = fmt.Fprintf(w, "\r\033[K%v", line)
			last = line
		}
	}
}

type statusView struct {
	recorder.Status
	Elapsed string `json:"elapsed"`
	Failure string `json:"failure,omitempty"`
}

func statusJSON(st recorder.Status) any {
	v := statusView{Status: st, Elapsed: encoder.TimeFormat(st.Elapsed)}
	if st.Failure != nil {
		v.Failure = st.Failure.Error()
	}
	return v
}
