package media

import (
	"errors"
	"testing"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		in   string
		want Rect
		err  bool
	}{
		{in: "0,0,640,480", want: Rect{W: 640, H: 480}},
		{in: " 10, 20, 30, 40", want: Rect{X: 10, Y: 20, W: 30, H: 40}},
		{in: "1,2,3", err: true},
		{in: "a,b,c,d", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRect(tt.in)
			if tt.err {
				if !errors.Is(err, ErrBadRect) {
					t.Errorf("expected ErrBadRect, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectWithin(t *testing.T) {
	display := Rect{W: 1920, H: 1080}
	tests := []struct {
		name string
		r    Rect
		ok   bool
	}{
		{name: "full", r: display, ok: true},
		{name: "inner", r: Rect{X: 100, Y: 100, W: 200, H: 200}, ok: true},
		{name: "zero width", r: Rect{W: 0, H: 10}},
		{name: "negative", r: Rect{W: -1, H: 10}},
		{name: "overflow", r: Rect{X: 1900, Y: 0, W: 100, H: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Within(display)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrBadRect) {
				t.Errorf("expected ErrBadRect, got %v", err)
			}
		})
	}
}
