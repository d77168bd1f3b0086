package encoder

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/screenkit/screenkit/pkg/logger"
	oss "github.com/screenkit/screenkit/pkg/os"
)

var ErrNoFfmpeg = errors.New("ffmpeg not found")

type FfmpegOptions struct {
	// Path to the ffmpeg binary, looked up in PATH when empty.
	Path   string
	Codec  string
	Preset string
	Crf    int
	PixFmt string
	// CloseTimeout is how long Close waits for ffmpeg to finish the file
	// before killing it.
	CloseTimeout time.Duration
}

func DefaultFfmpegOptions() FfmpegOptions {
	return FfmpegOptions{
		Codec:        "libx264",
		Preset:       "ultrafast",
		Crf:          23,
		PixFmt:       "yuv420p",
		CloseTimeout: 30 * time.Second,
	}
}

// Ffmpeg encodes frames by piping raw RGBA data into an ffmpeg process.
type Ffmpeg struct {
	bin  string
	opts FfmpegOptions
	log  *logger.Logger
}

func NewFfmpeg(opts FfmpegOptions, log *logger.Logger) (*Ffmpeg, error) {
	bin, err := FindBinary(opts.Path, "ffmpeg")
	if err != nil {
		return nil, err
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultFfmpegOptions().CloseTimeout
	}
	return &Ffmpeg{bin: bin, opts: opts, log: log.Module("ffmpeg")}, nil
}

// FindBinary locates a binary by an explicit path, in PATH or in common locations.
func FindBinary(path string, name string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoFfmpeg, err)
		}
		return path, nil
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = []string{"/opt/homebrew/bin/" + name, "/usr/local/bin/" + name}
	case "linux":
		paths = []string{"/usr/bin/" + name, "/usr/local/bin/" + name, "/snap/bin/" + name}
	case "windows":
		paths = []string{
			`C:\ffmpeg\bin\` + name + ".exe",
			`C:\Program Files\ffmpeg\bin\` + name + ".exe",
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s is not in PATH or common locations", ErrNoFfmpeg, name)
}

// Args builds ffmpeg arguments for raw RGBA input from stdin.
func (o FfmpegOptions) Args(path string, fps int, size image.Point) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",

		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",

		// yuv420p needs even dimensions
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", o.Codec,
	}
	if o.Preset != "" {
		args = append(args, "-preset", o.Preset)
	}
	if o.Crf > 0 {
		args = append(args, "-crf", strconv.Itoa(o.Crf))
	}
	if o.PixFmt != "" {
		args = append(args, "-pix_fmt", o.PixFmt)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, path)
}

func (f *Ffmpeg) Open(path string, fps int, size image.Point) (Stream, error) {
	if err := oss.CheckCreateParent(path); err != nil {
		return nil, err
	}

	args := f.opts.Args(path, fps, size)
	// not bound to any context, the process must outlive
	// a cancelled recording to write the container trailer
	cmd := exec.Command(f.bin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("get stdin pipe: %w", err)
	}
	stderr := &tail{max: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	f.log.Debug().Strs("args", args).Int("pid", cmd.Process.Pid).Msg("ffmpeg has started")

	s := &ffmpegStream{
		path:    path,
		size:    size,
		cmd:     cmd,
		stdin:   stdin,
		stderr:  stderr,
		done:    make(chan struct{}),
		timeout: f.opts.CloseTimeout,
		log:     f.log,
	}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

type ffmpegStream struct {
	path    string
	size    image.Point
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *tail
	timeout time.Duration
	log     *logger.Logger

	done    chan struct{}
	waitErr error

	mu       sync.Mutex
	closed   bool
	closeErr error
}

func (s *ffmpegStream) Write(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := checkSize(img, s.size); err != nil {
		return err
	}
	if err := writeRGBA(s.stdin, img); err != nil {
		select {
		case <-s.done:
			return fmt.Errorf("ffmpeg has exited: %w, %v", s.waitErr, s.stderr)
		default:
			return fmt.Errorf("ffmpeg write: %w", err)
		}
	}
	return nil
}

// Close ends the input and waits for ffmpeg to finalize the container.
func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closeErr
	}
	s.closed = true

	_ = s.stdin.Close()
	select {
	case <-s.done:
	case <-time.After(s.timeout):
		s.log.Warn().Msgf("ffmpeg hasn't finished in %v, killing it", s.timeout)
		_ = s.cmd.Process.Kill()
		<-s.done
	}
	if s.waitErr != nil {
		s.closeErr = fmt.Errorf("ffmpeg: %w, %v", s.waitErr, s.stderr)
	}
	return s.closeErr
}

func (s *ffmpegStream) Path() string { return s.path }

func (s *ffmpegStream) Discard() error {
	_ = s.Close()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// tail keeps the last max bytes written into it.
type tail struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
