package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewBuildsBothFormats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console"} {
		l, err := New("debug", format)
		if err != nil {
			t.Fatalf("%s: New error: %v", format, err)
		}
		if !l.Core().Enabled(-1) {
			t.Fatalf("%s: expected debug to be enabled", format)
		}
		_ = l.Sync()
	}
}
