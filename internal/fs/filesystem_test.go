package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photo.jpg")
	writeTestFile(t, file, "jpeg")

	m := NewOSFilesystemManager(nil)

	t.Run("regular file", func(t *testing.T) {
		p, err := m.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("expected file, got directory")
		}
		if p.Size() != 4 {
			t.Errorf("Size() = %d, want 4", p.Size())
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("expected directory")
		}
	})

	t.Run("missing path wraps ErrNotExist", func(t *testing.T) {
		_, err := m.Resolve(filepath.Join(dir, "missing.jpg"))
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Resolve() error = %v, want fs.ErrNotExist", err)
		}
	})
}

func TestOSFilesystemManager_OpenAndRemove(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeTestFile(t, file, "hello")

	m := NewOSFilesystemManager(nil)
	p, err := m.Resolve(file)
	if err != nil {
		t.Fatal(err)
	}

	rc, err := m.Open(p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("read %q, want %q", data, "hello")
	}

	if err := m.Remove(p); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove: %v", err)
	}

	dirPath, err := m.Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Open(dirPath); err == nil {
		t.Error("Open() on a directory should fail")
	}
	if err := m.Remove(dirPath); err == nil {
		t.Error("Remove() on a directory should fail")
	}
}

func TestOSFilesystemManager_WriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "nested", "script.py")
	m := NewOSFilesystemManager(nil)

	if err := m.WriteFile(target, strings.NewReader("first")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := m.WriteFile(target, strings.NewReader("second")); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target in the directory, found %d entries", len(entries))
	}
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.jpg"), "a")
	writeTestFile(t, filepath.Join(dir, "b.tmp"), "b")
	writeTestFile(t, filepath.Join(dir, "skip.txt"), "s")
	writeTestFile(t, filepath.Join(dir, IgnoreFileName), "skip.txt\ncache/\n")
	writeTestFile(t, filepath.Join(dir, "sub", "c.mp3"), "c")
	writeTestFile(t, filepath.Join(dir, "sub", "cache", "d.png"), "d")

	m := NewOSFilesystemManager([]string{"*.tmp"})
	root, err := m.Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}

	names := func(recursive bool) []string {
		t.Helper()
		paths, err := m.FindFiles(root, recursive)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		var out []string
		for _, p := range paths {
			rel, _ := filepath.Rel(dir, p.String())
			out = append(out, filepath.ToSlash(rel))
		}
		sort.Strings(out)
		return out
	}

	t.Run("flat", func(t *testing.T) {
		got := names(false)
		if strings.Join(got, ",") != "a.jpg" {
			t.Errorf("FindFiles(false) = %v, want [a.jpg]", got)
		}
	})

	t.Run("recursive", func(t *testing.T) {
		got := names(true)
		if strings.Join(got, ",") != "a.jpg,sub/c.mp3" {
			t.Errorf("FindFiles(true) = %v, want [a.jpg sub/c.mp3]", got)
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		file, err := m.Resolve(filepath.Join(dir, "a.jpg"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.FindFiles(file, false); err == nil {
			t.Error("FindFiles() on a file should fail")
		}
	})
}
