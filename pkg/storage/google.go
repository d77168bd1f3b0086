package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
)

// Google uploads into a Google Cloud Storage bucket
// with the default application credentials.
type Google struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewGoogle(ctx context.Context, bucket string) (*Google, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no gcs bucket")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Google{client: client, bucket: client.Bucket(bucket)}, nil
}

func (g *Google) Save(ctx context.Context, name string, path string) (err error) {
	reader, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	wc := g.bucket.Object(name).NewWriter(ctx)
	if _, err = io.Copy(wc, reader); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

func (g *Google) Close() error { return g.client.Close() }
