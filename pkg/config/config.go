package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/screenkit/screenkit/pkg/buffer"
	"github.com/screenkit/screenkit/pkg/encoder"
	"github.com/screenkit/screenkit/pkg/media"
	"github.com/screenkit/screenkit/pkg/os"
	"github.com/screenkit/screenkit/pkg/recorder"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Debug bool
	// Lock is a path to the single instance lock file.
	Lock       string
	Recorder   Recorder
	Hotkeys    Hotkeys
	Monitoring Monitoring
	Storage    Storage
}

type Recorder struct {
	// Output name template, see %date:<layout>%, %rand:<n>%, %session%
	// and {user} for the home directory.
	Output string `default:"screenkit-%date:20060102-150405%.mp4"`
	Fps    int    `default:"15"`
	// Region is x,y,width,height of the captured area, the whole display if empty.
	Region    string
	Display   int
	Buffer    Buffer
	Encoder   Encoder
	Report    bool
	Countdown time.Duration
}

type Buffer struct {
	Capacity int           `default:"30"`
	Policy   string        `default:"drop-newest"`
	Wait     time.Duration `default:"50ms"`
}

type Encoder struct {
	// Type is ffmpeg or images.
	Type    string `default:"ffmpeg"`
	Overlay bool
	Ffmpeg  struct {
		Path         string
		Codec        string        `default:"libx264"`
		Preset       string        `default:"ultrafast"`
		Crf          int           `default:"23"`
		PixFmt       string        `default:"yuv420p"`
		CloseTimeout time.Duration `default:"30s"`
	}
	Images struct {
		CompressLevel int
		Zip           bool
	}
}

type Hotkeys struct {
	// Source is system (global hotkeys), terminal or none.
	Source   string `default:"system"`
	Start    string `default:"ctrl+shift+r"`
	Pause    string `default:"ctrl+shift+p"`
	Resume   string `default:"ctrl+shift+u"`
	Stop     string `default:"ctrl+esc"`
	Terminal struct {
		Start  string `default:"r"`
		Pause  string `default:"p"`
		Resume string `default:"u"`
		Stop   string `default:"q"`
	}
}

// Keys returns start, pause, resume and stop chords of the selected source.
func (h Hotkeys) Keys() (start, pause, resume, stop string) {
	if h.Source == "terminal" {
		t := h.Terminal
		return t.Start, t.Pause, t.Resume, t.Stop
	}
	return h.Start, h.Pause, h.Resume, h.Stop
}

type Monitoring struct {
	Port             int `default:"6601"`
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
	StatusEnabled    bool
}

func (c *Monitoring) IsEnabled() bool {
	return c.MetricEnabled || c.ProfilingEnabled || c.StatusEnabled
}

type Storage struct {
	// Provider is none, gcs or http.
	Provider string `default:"none"`
	// Bucket of gcs.
	Bucket string
	// Url of a pre-authenticated http endpoint.
	Url string
	// Timeout of a single upload.
	Timeout time.Duration `default:"5m"`
}

// Validate checks values that fig can't.
func (c *Config) Validate() error {
	r := c.Recorder
	if r.Output == "" {
		return fmt.Errorf("%w: empty recorder.output", ErrInvalid)
	}
	if r.Fps <= 0 || r.Fps > 240 {
		return fmt.Errorf("%w: recorder.fps should be in [1, 240], got %v", ErrInvalid, r.Fps)
	}
	if r.Region != "" {
		rect, err := media.ParseRect(r.Region)
		if err != nil {
			return fmt.Errorf("%w: recorder.region: %w", ErrInvalid, err)
		}
		if rect.W <= 0 || rect.H <= 0 {
			return fmt.Errorf("%w: recorder.region has non-positive size", ErrInvalid)
		}
	}
	if r.Display < 0 {
		return fmt.Errorf("%w: negative recorder.display", ErrInvalid)
	}
	if r.Buffer.Capacity <= 0 {
		return fmt.Errorf("%w: recorder.buffer.capacity should be positive", ErrInvalid)
	}
	if _, err := buffer.ParsePolicy(r.Buffer.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if r.Countdown < 0 {
		return fmt.Errorf("%w: negative recorder.countdown", ErrInvalid)
	}
	switch r.Encoder.Type {
	case "ffmpeg", "images":
	default:
		return fmt.Errorf("%w: unknown recorder.encoder.type [%v]", ErrInvalid, r.Encoder.Type)
	}
	switch c.Hotkeys.Source {
	case "system", "terminal", "none":
	default:
		return fmt.Errorf("%w: unknown hotkeys.source [%v]", ErrInvalid, c.Hotkeys.Source)
	}
	switch c.Storage.Provider {
	case "", "none":
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required for gcs", ErrInvalid)
		}
	case "http":
		if c.Storage.Url == "" {
			return fmt.Errorf("%w: storage.url is required for http", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage.provider [%v]", ErrInvalid, c.Storage.Provider)
	}
	return nil
}

// RecorderOptions converts the config into recorder options.
func (c *Config) RecorderOptions() (recorder.Options, error) {
	if err := c.Validate(); err != nil {
		return recorder.Options{}, fmt.Errorf("%w: %w", recorder.ErrConfiguration, err)
	}
	r := c.Recorder
	policy, _ := buffer.ParsePolicy(r.Buffer.Policy)
	var rect media.Rect
	if r.Region != "" {
		rect, _ = media.ParseRect(r.Region)
	}
	return recorder.Options{
		Output:    r.Output,
		Fps:       r.Fps,
		Rect:      rect,
		Buffer:    buffer.Options{Capacity: r.Buffer.Capacity, Policy: policy, Wait: r.Buffer.Wait},
		Overlay:   r.Encoder.Overlay,
		Report:    r.Report,
		Countdown: r.Countdown,
	}, nil
}

func (e Encoder) FfmpegOptions() encoder.FfmpegOptions {
	return encoder.FfmpegOptions{
		Path:         e.Ffmpeg.Path,
		Codec:        e.Ffmpeg.Codec,
		Preset:       e.Ffmpeg.Preset,
		Crf:          e.Ffmpeg.Crf,
		PixFmt:       e.Ffmpeg.PixFmt,
		CloseTimeout: e.Ffmpeg.CloseTimeout,
	}
}

func (e Encoder) ImagesOptions() encoder.ImagesOptions {
	return encoder.ImagesOptions{CompressLevel: e.Images.CompressLevel, Zip: e.Images.Zip}
}

// expandSpecialTags replaces all the special tags in the config.
func (c *Config) expandSpecialTags() error {
	tag := "{user}"
	for _, dir := range []*string{&c.Recorder.Output, &c.Lock} {
		if *dir == "" || !strings.Contains(*dir, tag) {
			continue
		}
		home, err := os.GetUserHome()
		if err != nil {
			return fmt.Errorf("couldn't read user home directory, %w", err)
		}
		*dir = filepath.FromSlash(strings.ReplaceAll(*dir, tag, home))
	}
	return nil
}
