package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/screenkit/screenkit/pkg/capture"
	"github.com/screenkit/screenkit/pkg/config"
	"github.com/screenkit/screenkit/pkg/encoder"
	"github.com/screenkit/screenkit/pkg/hotkey"
	"github.com/screenkit/screenkit/pkg/logger"
	"github.com/screenkit/screenkit/pkg/monitoring"
	oss "github.com/screenkit/screenkit/pkg/os"
	"github.com/screenkit/screenkit/pkg/recorder"
	"github.com/screenkit/screenkit/pkg/service"
	"github.com/screenkit/screenkit/pkg/storage"
	"github.com/screenkit/screenkit/pkg/thread"
	"github.com/spf13/pflag"
)

var Version = "?"

const shutdownTimeout = time.Minute

func newEncoder(conf config.Encoder, log *logger.Logger) (encoder.Opener, error) {
	if conf.Type == "images" {
		return encoder.NewImages(conf.ImagesOptions(), log), nil
	}
	return encoder.NewFfmpeg(conf.FfmpegOptions(), log)
}

func newSource(conf config.Config, synthetic bool) capture.Source {
	if synthetic {
		return capture.NewSynthetic(640, 360)
	}
	return capture.NewScreen(conf.Recorder.Display)
}

func run() (code int) {
	args := os.Args[1:]
	confPath := config.ConfigPath(args)
	conf, err := config.Load(confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	flags, err := conf.ParseFlags("screenkit", args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	if flags.Version {
		fmt.Println(Version)
		return 0
	}

	log := logger.NewConsole(conf.Debug, "rec", flags.NoColor)
	log.Info().Msgf("version: %v", Version)

	lock, err := oss.NewFileLock(conf.Lock)
	if err == nil {
		err = lock.TryLock()
	}
	if err != nil {
		log.Error().Err(err).Msg("Another recorder is running")
		return 1
	}
	defer func() { _ = lock.Unlock() }()

	opts, err := conf.RecorderOptions()
	if err != nil {
		log.Error().Err(err).Msg("Bad options")
		return 2
	}
	enc, err := newEncoder(conf.Recorder.Encoder, log)
	if err != nil {
		log.Error().Err(err).Msg("No encoder, install ffmpeg or use --encoder images")
		return 1
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	ctrl := recorder.New(opts, newSource(conf, flags.Synthetic), enc, log, recorder.WithMetrics(recorder.NewMetrics(reg)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploader, err := storage.New(ctx, storage.Options{
		Provider: conf.Storage.Provider,
		Bucket:   conf.Storage.Bucket,
		Url:      conf.Storage.Url,
		Timeout:  conf.Storage.Timeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("Uploads are disabled")
		uploader = storage.Noop{}
	}
	var failed atomic.Bool
	ctrl.OnFinish(func(r recorder.Result) {
		printResult(os.Stdout, r)
		failed.Store(r.Err != nil)
		upload(ctx, uploader, conf.Storage.Timeout, r, log)
	})

	interrupt := make(chan struct{}, 1)
	services := service.Group{}
	var commands <-chan recorder.Command
	if conf.Hotkeys.Source != "none" {
		l, err := newListener(conf.Hotkeys, func() {
			select {
			case interrupt <- struct{}{}:
			default:
			}
		}, log)
		if err != nil {
			log.Error().Err(err).Msg("Bad hotkeys")
			return 2
		}
		commands = l.Commands()
		services.Add(l)
	}
	if conf.Monitoring.IsEnabled() {
		services.Add(monitoring.New(monitoring.Config(conf.Monitoring), reg, func() any { return statusJSON(ctrl.Status()) }, log))
	}
	if file := config.File(confPath); file != "" {
		services.Add(config.NewWatcher(file, func(c config.Config) {
			if o, err := c.RecorderOptions(); err == nil {
				if err := ctrl.Reconfigure(o); err != nil {
					log.Warn().Err(err).Msg("Couldn't apply the config")
				}
			}
		}, log))
	}
	services.Start()

	printSettings(os.Stdout, conf, opts)
	go ctrl.Run(ctx, commands)
	go printStatus(ctx, os.Stdout, ctrl)

	var finished <-chan struct{}
	if flags.Autostart {
		if err := ctrl.Start(); err != nil {
			log.Error().Err(err).Msg("Couldn't start recording")
			code = 1
		} else {
			finished = ctrl.Done()
			if flags.Duration > 0 {
				timer := time.AfterFunc(flags.Duration, func() { _, _ = ctrl.Stop() })
				defer timer.Stop()
			}
		}
	}

	if code == 0 {
		select {
		case sig := <-oss.ExpectTermination(ctx):
			log.Info().Msgf("Shutting down [os:%v]", sig)
		case <-interrupt:
			log.Info().Msg("Shutting down [ctrl+c]")
		case <-finished:
		}
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := ctrl.Shutdown(sctx); err != nil && !errors.Is(err, recorder.ErrNoFrames) {
		log.Error().Err(err).Msg("Recording shutdown")
	}
	if err := services.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("Services shutdown")
	}
	if failed.Load() && code == 0 {
		code = 1
	}
	return code
}

func newListener(conf config.Hotkeys, interrupt func(), log *logger.Logger) (*hotkey.Listener, error) {
	bindings, err := hotkey.Bindings(conf.Keys())
	if err != nil {
		return nil, err
	}
	var src hotkey.Source = hotkey.NewTerminal(interrupt)
	if conf.Source == "system" {
		if src, err = systemHotkeys(); err != nil {
			return nil, err
		}
	}
	return hotkey.NewListener(src, bindings, log)
}

// upload saves the recording and its report.
// Image directories are uploaded only when zipped.
func upload(ctx context.Context, up storage.Uploader, timeout time.Duration, r recorder.Result, log *logger.Logger) {
	if _, noop := up.(storage.Noop); noop || r.Output == "" {
		return
	}
	for _, path := range []string{r.Output, r.Report} {
		if info, err := os.Stat(path); path == "" || err != nil || info.IsDir() {
			continue
		}
		uctx, cancel := context.WithTimeout(ctx, timeout)
		err := up.Save(uctx, filepath.Base(path), path)
		cancel()
		if err != nil {
			log.Error().Err(err).Msgf("Upload of %v has failed", path)
			continue
		}
		log.Info().Msgf("%v has been uploaded", path)
	}
}

func main() {
	code := 0
	thread.MainWrapMaybe(func() { code = run() })
	os.Exit(code)
}
