package thread

import "testing"

func TestMainWrapMaybe(t *testing.T) {
	if isMacOs {
		t.Skip("needs the main thread")
	}
	value := 0
	MainWrapMaybe(func() { value = 1 })
	if value != 1 {
		t.Errorf("wrong value %v", value)
	}
}
