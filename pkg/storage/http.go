package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Http uploads with PUT requests to a pre-authenticated url,
// e.g. an object storage bucket link, as <url>/<name>.
// The upload is checked with the MD5 sum if the server returns one.
type Http struct {
	accessURL string
	client    *http.Client
}

func NewHttp(accessURL string, timeout time.Duration) (*Http, error) {
	if accessURL == "" {
		return nil, errors.New("pre-authenticated request was not specified")
	}
	if _, err := url.Parse(accessURL); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if !strings.HasSuffix(accessURL, "/") {
		accessURL += "/"
	}
	return &Http{accessURL: accessURL, client: &http.Client{Timeout: timeout}}, nil
}

func (s *Http) Save(ctx context.Context, name string, path string) error {
	srcMD5, size, err := fileMD5(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.accessURL+url.PathEscape(name), f)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Md5", srcMD5)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New(resp.Status)
	}

	dstMD5 := resp.Header.Get("Opc-Content-Md5")
	if dstMD5 == "" {
		dstMD5 = resp.Header.Get("Content-Md5")
	}
	if dstMD5 != "" && dstMD5 != srcMD5 {
		return fmt.Errorf("MD5 mismatch %v != %v", srcMD5, dstMD5)
	}
	return nil
}
