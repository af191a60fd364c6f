package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.sh")

	if err := WriteFileAtomic(path, []byte("first\n"), PermFile); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second\n"), PermFile); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("content = %q; want %q", data, "second\n")
	}

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry in %s, got %d", dir, len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "job.sh")
	err := WriteFileAtomic(path, []byte("x"), PermFile)
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	for i := 0; i < 2; i++ {
		if err := EnsureDir(path); err != nil {
			t.Fatalf("EnsureDir call %d failed: %v", i+1, err)
		}
	}
	if !DirExists(path) {
		t.Errorf("expected %s to exist", path)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := map[string]string{
		"a\r\nb\r\n": "a\nb\n",
		"a\rb":       "a\nb",
		"a\nb\n":     "a\nb\n",
		"":           "",
	}
	for input, want := range tests {
		if got := NormalizeNewlines(input); got != want {
			t.Errorf("NormalizeNewlines(%q) = %q; want %q", input, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/scratch/jobs"); got != filepath.Join(home, "scratch/jobs") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome changed absolute path: %q", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("ExpandHome changed ~user path: %q", got)
	}
}
