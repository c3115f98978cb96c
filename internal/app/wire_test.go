package app_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"olmcore/internal/app"
)

func TestNewWire(t *testing.T) {
	w, err := app.NewWire(app.Config{Home: filepath.Join(t.TempDir(), "nested", "home")})
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	if w.Accounts == nil || w.Prekeys == nil || w.Sessions == nil || w.Messages == nil || w.Groups == nil {
		t.Fatal("service not wired")
	}
	if _, err := w.Accounts.Profile(); err == nil {
		t.Fatal("fresh home has a profile")
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	app.NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged without verbose: %q", buf.String())
	}
	app.NewLogger(&buf, true).Debug("shown", "count", 3)
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
