// Package storage uploads finished recordings.
package storage

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"
)

// Uploader saves a local file under the name.
type Uploader interface {
	Save(ctx context.Context, name string, path string) error
}

type Options struct {
	// Provider is none, gcs or http.
	Provider string
	Bucket   string
	Url      string
	Timeout  time.Duration
}

func New(ctx context.Context, opts Options) (Uploader, error) {
	switch opts.Provider {
	case "", "none":
		return Noop{}, nil
	case "gcs":
		return NewGoogle(ctx, opts.Bucket)
	case "http":
		return NewHttp(opts.Url, opts.Timeout)
	}
	return nil, fmt.Errorf("unknown storage provider [%v]", opts.Provider)
}

// Noop uploads nothing.
type Noop struct{}

func (Noop) Save(context.Context, string, string) error { return nil }

func fileMD5(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()
	hash := md5.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, err
	}
	return base64.StdEncoding.EncodeToString(hash.Sum(nil)), n, nil
}
