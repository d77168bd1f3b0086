package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.mp4")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHttpSave(t *testing.T) {
	var got []byte
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		got, _ = io.ReadAll(r.Body)
		w.Header().Set("Opc-Content-Md5", r.Header.Get("Content-Md5"))
	}))
	defer srv.Close()

	up, err := NewHttp(srv.URL+"/bucket", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := up.Save(context.Background(), "rec.mp4", tempFile(t, "test")); err != nil {
		t.Fatal(err)
	}
	if string(got) != "test" || gotPath != "/bucket/rec.mp4" {
		t.Errorf("server got %q at %v", got, gotPath)
	}
}

func TestHttpSaveMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		// md5 of "test"
		w.Header().Set("Opc-Content-Md5", "CY9rzUYh03PK3k6DJie09g==")
	}))
	defer srv.Close()

	up, err := NewHttp(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := up.Save(context.Background(), "a", tempFile(t, "test")); err != nil {
		t.Errorf("same sums should pass: %v", err)
	}
	if err := up.Save(context.Background(), "b", tempFile(t, "other")); err == nil {
		t.Error("MD5 mismatch should fail")
	}
}

func TestHttpSaveStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	up, _ := NewHttp(srv.URL, time.Second)
	if err := up.Save(context.Background(), "a", tempFile(t, "x")); err == nil {
		t.Error("expected an error")
	}
	if _, err := NewHttp("", 0); err == nil {
		t.Error("empty url should fail")
	}
}

func TestNew(t *testing.T) {
	up, err := New(context.Background(), Options{Provider: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if err := up.Save(context.Background(), "a", "/nonexistent"); err != nil {
		t.Errorf("noop should accept anything: %v", err)
	}
	if _, err := New(context.Background(), Options{Provider: "ftp"}); err == nil {
		t.Error("unknown provider should fail")
	}
}
