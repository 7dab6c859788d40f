package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileWriter_Write(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	if _, err := fw.Write([]byte(`{"msg":"test"}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	logFile := filepath.Join(tmpDir, FileName(time.Now()))
	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), `{"msg":"test"}`) {
		t.Errorf("expected content to contain test message, got: %s", content)
	}

	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log file mode = %04o, want 0600", perm)
	}
}

func TestFileWriter_LatestSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	target, err := os.Readlink(filepath.Join(tmpDir, "latest"))
	if err != nil {
		t.Fatalf("reading symlink: %v", err)
	}
	if target != FileName(time.Now()) {
		t.Errorf("symlink target = %q, want %q", target, FileName(time.Now()))
	}
}

func TestFileWriter_RotatesOnDayChange(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	tomorrow := time.Now().AddDate(0, 0, 1)
	fw.now = func() time.Time { return tomorrow }
	if _, err := fw.Write([]byte("next day\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, FileName(tomorrow)))
	if err != nil {
		t.Fatalf("reading rotated file: %v", err)
	}
	if string(content) != "next day\n" {
		t.Errorf("rotated content = %q", content)
	}
}

func TestCleanup(t *testing.T) {
	tmpDir := t.TempDir()

	old := filepath.Join(tmpDir, FileName(time.Now().AddDate(0, 0, -30)))
	recent := filepath.Join(tmpDir, FileName(time.Now().AddDate(0, 0, -1)))
	other := filepath.Join(tmpDir, "notes.txt")
	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	Cleanup(tmpDir, 14)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected old log file to be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("expected recent log file to be kept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("expected unrelated file to be kept")
	}
}
