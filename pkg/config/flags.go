package config

import (
	"fmt"
	"time"

	"github.com/screenkit/screenkit/pkg/media"
	"github.com/spf13/pflag"
)

// Flags are runtime params that don't live in the config file.
type Flags struct {
	Config    string
	Autostart bool
	// Duration stops an autostarted recording after that time.
	Duration  time.Duration
	Synthetic bool
	NoColor   bool
	Version   bool
}

// ConfigPath finds the value of the config flag before the full parsing,
// the config is needed to set flag defaults.
func ConfigPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.StringP("config", "c", "", "")
	fs.BoolP("help", "h", false, "")
	_ = fs.Parse(args)
	return *path
}

// ParseFlags updates config values from passed runtime flags.
// Every flag has the current config value as its default.
func (c *Config) ParseFlags(name string, args []string) (Flags, error) {
	var f Flags
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&f.Config, "config", "c", "", "Set custom configuration file path or directory")
	fs.StringVarP(&c.Recorder.Output, "output", "o", c.Recorder.Output, "Output file name template")
	fs.IntVarP(&c.Recorder.Fps, "fps", "f", c.Recorder.Fps, "Target frame rate")
	fs.VarP((*region)(&c.Recorder.Region), "region", "r", "Capture area as x,y,width,height (default the whole display)")
	fs.IntVarP(&c.Recorder.Display, "display", "d", c.Recorder.Display, "Display index")
	fs.IntVar(&c.Recorder.Buffer.Capacity, "buffer", c.Recorder.Buffer.Capacity, "Frame buffer capacity")
	fs.StringVar(&c.Recorder.Buffer.Policy, "policy", c.Recorder.Buffer.Policy, "Buffer overflow policy: drop-newest, drop-oldest or block")
	fs.StringVar(&c.Recorder.Encoder.Type, "encoder", c.Recorder.Encoder.Type, "Encoder: ffmpeg or images")
	fs.BoolVar(&c.Recorder.Encoder.Overlay, "overlay", c.Recorder.Encoder.Overlay, "Stamp time into frames")
	fs.BoolVar(&c.Recorder.Report, "report", c.Recorder.Report, "Write a yaml report next to the output")
	fs.DurationVar(&c.Recorder.Countdown, "countdown", c.Recorder.Countdown, "Delay before the first frame")
	fs.StringVar(&c.Hotkeys.Source, "hotkeys", c.Hotkeys.Source, "Hotkeys: system, terminal or none")
	fs.BoolVar(&f.Autostart, "autostart", false, "Start recording right away")
	fs.DurationVar(&f.Duration, "duration", 0, "Stop an autostarted recording after that time")
	fs.BoolVar(&f.Synthetic, "synthetic", false, "Record a test pattern instead of the screen")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Debug logs")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable colored logs")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.BoolVar(&c.Monitoring.MetricEnabled, "monitoring.metric", c.Monitoring.MetricEnabled, "Enable prometheus metrics")
	fs.BoolVar(&c.Monitoring.StatusEnabled, "monitoring.status", c.Monitoring.StatusEnabled, "Enable the status endpoint")
	fs.StringVar(&c.Storage.Provider, "storage", c.Storage.Provider, "Upload recordings: none, gcs or http")
	fs.BoolVarP(&f.Version, "version", "v", false, "Print version")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.Duration < 0 {
		return f, fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	if err := c.expandSpecialTags(); err != nil {
		return f, err
	}
	return f, c.Validate()
}

// region is a pflag.Value of the capture rectangle.
type region string

func (r *region) String() string { return string(*r) }
func (r *region) Type() string   { return "x,y,w,h" }

func (r *region) Set(v string) error {
	if v == "" {
		*r = ""
		return nil
	}
	rect, err := media.ParseRect(v)
	if err != nil {
		return err
	}
	*r = region(rect.String())
	return nil
}
