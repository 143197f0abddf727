package hv_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hv-go/internal/codec"
	"hv-go/internal/hv"
	"hv-go/internal/testutil"
)

func TestVaultStore_DecodeAndSaveFile(t *testing.T) {
	ctx := context.Background()
	content := []byte("print('Hello Vault!')")

	t.Run("restores bytes and keeps the record", func(t *testing.T) {
		store, _, fsmgr := setup(t)
		fsmgr.AddFile("/src/hello.py", content)
		if _, err := store.AddFile(ctx, "/src/hello.py", hv.DeleteOriginal); err != nil {
			t.Fatal(err)
		}
		if fsmgr.Exists("/src/hello.py") {
			t.Fatal("original should have been removed")
		}

		for i := 0; i < 2; i++ {
			out, err := store.DecodeAndSaveFile(ctx, "hello.py", "/restore")
			if err != nil {
				t.Fatalf("DecodeAndSaveFile() #%d error = %v", i+1, err)
			}
			if out != filepath.Join("/restore", "hello.py") {
				t.Errorf("DecodeAndSaveFile() = %q", out)
			}
			got, ok := fsmgr.Content(out)
			if !ok || string(got) != string(content) {
				t.Errorf("restored content = %q, want %q", got, content)
			}
		}
		if store.Len() != 1 {
			t.Errorf("restore must not remove the record, Len() = %d", store.Len())
		}
	})

	t.Run("defaults to downloads directory", func(t *testing.T) {
		store, _, fsmgr := setup(t)
		fsmgr.AddFile("/src/a.txt", []byte("a"))
		if _, err := store.AddFile(ctx, "/src/a.txt", hv.KeepOriginal); err != nil {
			t.Fatal(err)
		}

		out, err := store.DecodeAndSaveFile(ctx, "a.txt", "")
		if err != nil {
			t.Fatalf("DecodeAndSaveFile() error = %v", err)
		}
		if out != filepath.Join(testutil.TestDownloadsDir, "a.txt") {
			t.Errorf("DecodeAndSaveFile() = %q, want downloads directory", out)
		}
	})

	t.Run("no destination available", func(t *testing.T) {
		docs := testutil.NewTestDocumentStore()
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/src/a.txt", []byte("a"))
		store, err := hv.Open(ctx, docs, fsmgr, codec.NewBase64Codec(), hv.NewNopLogger(), "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.AddFile(ctx, "/src/a.txt", hv.KeepOriginal); err != nil {
			t.Fatal(err)
		}

		if _, err := store.DecodeAndSaveFile(ctx, "a.txt", ""); !errors.Is(err, hv.ErrDirectoryUnavailable) {
			t.Errorf("DecodeAndSaveFile() error = %v, want ErrDirectoryUnavailable", err)
		}
	})

	t.Run("unknown filename", func(t *testing.T) {
		store, _, _ := setup(t)

		if _, err := store.DecodeAndSaveFile(ctx, "nothing.txt", "/restore"); !errors.Is(err, hv.ErrRecordNotFound) {
			t.Errorf("DecodeAndSaveFile() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("bad payload only affects its record", func(t *testing.T) {
		docs := testutil.NewTestDocumentStore()
		docs.SetData([]byte(`{
			"password": "vault",
			"should_delete_originals": false,
			"file_records": [
				{"filename": "broken.txt", "data": "%%%not-base64", "type": "document"},
				{"filename": "fine.txt", "data": "ZmluZQ==", "type": "document"}
			]
		}`))
		fsmgr := testutil.NewMockFilesystemManager()
		store := testutil.NewTestVault(t, docs, fsmgr)

		if store.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", store.Len())
		}
		if _, err := store.DecodeAndSaveFile(ctx, "broken.txt", "/restore"); !errors.Is(err, hv.ErrDecode) {
			t.Errorf("DecodeAndSaveFile(broken) error = %v, want ErrDecode", err)
		}
		out, err := store.DecodeAndSaveFile(ctx, "fine.txt", "/restore")
		if err != nil {
			t.Fatalf("DecodeAndSaveFile(fine) error = %v", err)
		}
		if got, _ := fsmgr.Content(out); string(got) != "fine" {
			t.Errorf("restored content = %q, want %q", got, "fine")
		}
	})

	t.Run("write failure", func(t *testing.T) {
		store, _, fsmgr := setup(t)
		fsmgr.AddFile("/src/a.txt", []byte("a"))
		if _, err := store.AddFile(ctx, "/src/a.txt", hv.KeepOriginal); err != nil {
			t.Fatal(err)
		}
		fsmgr.WriteErr = errors.New("read-only filesystem")

		if _, err := store.DecodeAndSaveFile(ctx, "a.txt", "/restore"); err == nil {
			t.Error("DecodeAndSaveFile() expected write error")
		}
	})
}
