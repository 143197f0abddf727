package mirror

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hv-go/internal/config"
	"hv-go/internal/hv"
)

// exerciseMirror runs the behaviour every Mirror implementation shares.
func exerciseMirror(t *testing.T, m hv.Mirror) {
	t.Helper()
	ctx := context.Background()

	if err := m.ValidateSetup(ctx); err != nil {
		t.Fatalf("ValidateSetup() error = %v", err)
	}

	var buf bytes.Buffer
	if err := m.GetDocument(ctx, "vault-1", &buf); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("GetDocument() on empty mirror error = %v, want fs.ErrNotExist", err)
	}

	first := `{"password": "a"}`
	if err := m.PutDocument(ctx, "vault-1", strings.NewReader(first), int64(len(first))); err != nil {
		t.Fatalf("PutDocument() error = %v", err)
	}
	second := `{"password": "b"}`
	if err := m.PutDocument(ctx, "vault-1", strings.NewReader(second), int64(len(second))); err != nil {
		t.Fatalf("PutDocument() replace error = %v", err)
	}

	buf.Reset()
	if err := m.GetDocument(ctx, "vault-1", &buf); err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if buf.String() != second {
		t.Errorf("GetDocument() = %q, want %q", buf.String(), second)
	}

	buf.Reset()
	if err := m.GetDocument(ctx, "vault-2", &buf); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("GetDocument() for other vault error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryMirror(t *testing.T) {
	m := NewMemoryMirror()
	exerciseMirror(t, m)
	if m.Puts() != 2 {
		t.Errorf("Puts() = %d, want 2", m.Puts())
	}

	if err := m.PutDocument(context.Background(), "v", strings.NewReader("abc"), 10); err == nil {
		t.Error("PutDocument() with wrong size should fail")
	}
}

func TestFileSystemMirror(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mirror")
	m, err := NewFileSystemMirror(root)
	if err != nil {
		t.Fatalf("NewFileSystemMirror() error = %v", err)
	}
	exerciseMirror(t, m)

	if _, err := os.Stat(filepath.Join(root, "vault-1.json")); err != nil {
		t.Errorf("document file not created: %v", err)
	}

	t.Run("size mismatch leaves previous copy", func(t *testing.T) {
		err := m.PutDocument(context.Background(), "vault-1", strings.NewReader("short"), 100)
		if err == nil {
			t.Fatal("PutDocument() expected size mismatch error")
		}
		data, err := os.ReadFile(filepath.Join(root, "vault-1.json"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != `{"password": "b"}` {
			t.Errorf("document = %q, previous copy should survive", data)
		}
	})

	t.Run("rejects vault ids with path elements", func(t *testing.T) {
		if err := m.PutDocument(context.Background(), "../escape", strings.NewReader("x"), 1); err == nil {
			t.Error("PutDocument() expected error for invalid vault id")
		}
	})

	t.Run("validate fails when root vanishes", func(t *testing.T) {
		gone, err := NewFileSystemMirror(filepath.Join(t.TempDir(), "gone"))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.RemoveAll(gone.root); err != nil {
			t.Fatal(err)
		}
		if err := gone.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error")
		}
	})
}

func TestNewMirrorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MirrorConfig
		wantErr bool
		wantNil bool
	}{
		{name: "none", cfg: config.MirrorConfig{Type: "none"}, wantNil: true},
		{name: "memory", cfg: config.MirrorConfig{Type: "memory"}},
		{name: "filesystem", cfg: config.MirrorConfig{Type: "filesystem", FSRoot: t.TempDir()}},
		{name: "filesystem without root", cfg: config.MirrorConfig{Type: "filesystem"}, wantErr: true, wantNil: true},
		{name: "s3 without bucket", cfg: config.MirrorConfig{Type: "s3"}, wantErr: true, wantNil: true},
		{name: "unknown", cfg: config.MirrorConfig{Type: "ftp"}, wantErr: true, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMirrorFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMirrorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewMirrorFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
