package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/screenkit/screenkit/pkg/logger"
	oss "github.com/screenkit/screenkit/pkg/os"
)

const (
	DemuxFile = "input.txt"
	imageFile = "f%07d.png"
)

type ImagesOptions struct {
	// CompressLevel is a png.CompressionLevel value.
	CompressLevel int
	// Zip packs the finished directory into <dir>.zip and removes the directory.
	Zip bool
}

// Images writes every frame as a numbered PNG file into a directory
// together with an ffmpeg concat demuxer file, e.g.:
//
//	ffmpeg -f concat -i input.txt -pix_fmt yuv420p out.mp4
type Images struct {
	opts ImagesOptions
	log  *logger.Logger
}

func NewImages(opts ImagesOptions, log *logger.Logger) *Images {
	return &Images{opts: opts, log: log.Module("images")}
}

type pool struct{ sync.Pool }

func pngBuf() *pool                      { return &pool{sync.Pool{New: func() any { return &png.EncoderBuffer{} }}} }
func (p *pool) Get() *png.EncoderBuffer  { return p.Pool.Get().(*png.EncoderBuffer) }
func (p *pool) Put(b *png.EncoderBuffer) { p.Pool.Put(b) }

func (i *Images) Open(dir string, fps int, size image.Point) (Stream, error) {
	if err := oss.CheckCreateDir(dir); err != nil {
		return nil, err
	}
	return &imageStream{
		dir:  dir,
		fps:  fps,
		size: size,
		opts: i.opts,
		log:  i.log,
		e: &png.Encoder{
			CompressionLevel: png.CompressionLevel(i.opts.CompressLevel),
			BufferPool:       pngBuf(),
		},
		sem: make(chan struct{}, runtime.GOMAXPROCS(0)),
	}, nil
}

type imageStream struct {
	dir  string
	fps  int
	size image.Point
	opts ImagesOptions
	log  *logger.Logger
	e    *png.Encoder

	sem chan struct{}
	wg  sync.WaitGroup

	mu       sync.Mutex
	n        int
	closed   bool
	zipped   bool
	closeErr error

	errMu sync.Mutex
	errs  *multierror.Error
}

func (s *imageStream) Write(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.err(); err != nil {
		return err
	}
	if err := checkSize(img, s.size); err != nil {
		return err
	}
	s.n++
	name := fmt.Sprintf(imageFile, s.n)
	s.sem <- struct{}{}
	s.wg.Add(1)
	go s.save(name, img)
	return nil
}

func (s *imageStream) save(name string, img *image.RGBA) {
	defer func() {
		<-s.sem
		s.wg.Done()
	}()

	var buf bytes.Buffer
	buf.Grow(img.Bounds().Dx() * img.Bounds().Dy() * 4)
	err := s.e.Encode(&buf, img)
	if err == nil {
		err = os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0644)
	}
	if err != nil {
		s.errMu.Lock()
		s.errs = multierror.Append(s.errs, fmt.Errorf("%v: %w", name, err))
		s.errMu.Unlock()
	}
}

func (s *imageStream) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.errs.ErrorOrNil()
}

// Close waits for pending images and writes the demux file.
// Frames written before a failure are kept and listed.
func (s *imageStream) Close() error {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		return s.closeErr
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	var result *multierror.Error
	if err := s.err(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.writeDemux(); err != nil {
		result = multierror.Append(result, err)
	}
	if result.ErrorOrNil() == nil && s.opts.Zip {
		if err := compress(s.dir, s.dir); err != nil {
			result = multierror.Append(result, err)
		} else {
			s.zipped = true
			if err := os.RemoveAll(s.dir); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	s.closeErr = result.ErrorOrNil()
	return s.closeErr
}

// writeDemux makes ffmpeg concat demuxer file.
//
// See: https://ffmpeg.org/ffmpeg-formats.html#concat
func (s *imageStream) writeDemux() error {
	b := strings.Builder{}
	b.WriteString("ffconcat version 1.0\n")
	b.WriteString(meta("v", "1"))
	b.WriteString(meta("date", time.Now().Format("20060102")))
	b.WriteString(meta("fps", s.fps))
	b.WriteString(meta("width", s.size.X))
	b.WriteString(meta("height", s.size.Y))
	b.WriteString(meta("frames", s.n))
	b.WriteString("\n")

	dur := Interval(s.fps).Seconds()
	for i := 1; i <= s.n; i++ {
		name := fmt.Sprintf(imageFile, i)
		if !oss.Exists(filepath.Join(s.dir, name)) {
			continue
		}
		b.WriteString(fmt.Sprintf("file %v\nduration %f\n", name, dur))
	}
	return writeFile(filepath.Join(s.dir, DemuxFile), []byte(b.String()))
}

// Path is the frame directory or its zip archive.
func (s *imageStream) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zipped {
		return s.dir + ".zip"
	}
	return s.dir
}

func (s *imageStream) Discard() error {
	_ = s.Close()
	var result *multierror.Error
	for _, p := range []string{s.dir, s.dir + ".zip"} {
		if err := os.RemoveAll(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// meta adds stream_meta key value line.
func meta(key string, value any) string { return fmt.Sprintf("stream_meta %s '%v'\n", key, value) }
