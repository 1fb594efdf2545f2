package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShortenHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{home, "~"},
		{filepath.Join(home, "books", "a.pdf"), "~" + string(filepath.Separator) + filepath.Join("books", "a.pdf")},
		{"/elsewhere/a.pdf", "/elsewhere/a.pdf"},
		{home + "suffix", home + "suffix"},
	}

	for _, tt := range tests {
		if got := ShortenHome(tt.in); got != tt.want {
			t.Errorf("ShortenHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeKVs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	kv := sanitizeKVs([]interface{}{"file_path", filepath.Join(home, "x.pdf"), "words", 3, "dangling"})
	if len(kv) != 5 {
		t.Fatalf("len = %d, want 5", len(kv))
	}
	if s := kv[1].(string); !strings.HasPrefix(s, "~") {
		t.Errorf("file_path not shortened: %q", s)
	}
	if kv[3] != 3 || kv[4] != "dangling" {
		t.Errorf("other values changed: %v", kv)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sezi.log")
	log, err := New("prod", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("component", "test").Info("hello", "words", 5)
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"component":"test"`) {
		t.Errorf("unexpected log output: %s", data)
	}
}
