package capture

import (
	"errors"
	"testing"

	"github.com/screenkit/screenkit/pkg/media"
)

func TestSynthetic(t *testing.T) {
	s := NewSynthetic(32, 16)
	b, err := s.Bounds()
	if err != nil {
		t.Fatal(err)
	}
	if b != (media.Rect{W: 32, H: 16}) {
		t.Errorf("wrong bounds %v", b)
	}
	img, err := s.Capture(media.Rect{W: 8, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("wrong image size %v", img.Bounds())
	}
}

func TestSyntheticFailure(t *testing.T) {
	s := &Synthetic{W: 4, H: 4, FailAfter: 2}
	for i := 0; i < 2; i++ {
		if _, err := s.Capture(media.Rect{W: 4, H: 4}); err != nil {
			t.Fatalf("grab %v: %v", i, err)
		}
	}
	if _, err := s.Capture(media.Rect{W: 4, H: 4}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if s.Grabs() != 2 {
		t.Errorf("grabs = %v, want 2", s.Grabs())
	}
}

func TestScreen(t *testing.T) {
	s := NewScreen(0)
	b, err := s.Bounds()
	if err != nil {
		t.Skipf("no display: %v", err)
	}
	r := media.Rect{X: b.X, Y: b.Y, W: 16, H: 16}
	img, err := s.Capture(r)
	if err != nil {
		t.Skipf("capture is not permitted: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("wrong width %v", img.Bounds().Dx())
	}
}
