package logging

import "testing"

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New("debug", format)
		if err != nil {
			t.Fatalf("new %s logger: %v", format, err)
		}
		if !log.Core().Enabled(-1) {
			t.Fatalf("expected debug enabled for %s logger", format)
		}
	}

	log, err := New("warn", "json")
	if err != nil {
		t.Fatalf("new warn logger: %v", err)
	}
	if log.Core().Enabled(0) {
		t.Fatalf("expected info disabled at warn level")
	}

	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
