package document_test

import (
	"context"
	"errors"
	"testing"

	"hv-go/internal/category"
	"hv-go/internal/document"
	"hv-go/internal/hv"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := document.NewMemoryStore()

	if doc, err := m.Load(ctx); doc != nil || err != nil {
		t.Fatalf("Load() on empty store = %v, %v", doc, err)
	}

	doc := &hv.Document{
		Config:  hv.DefaultVaultConfig(),
		Records: []hv.FileRecord{{Filename: "x.wav", Payload: "AA==", Category: category.Audio}},
	}
	if err := m.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if m.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", m.Saves())
	}

	boom := errors.New("disk full")
	m.FailSaves(boom)
	if err := m.Save(ctx, hv.NewDocument()); !errors.Is(err, boom) {
		t.Errorf("Save() error = %v, want %v", err, boom)
	}
	m.FailSaves(nil)

	got, err := m.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Records) != 1 || got.Records[0].Filename != "x.wav" {
		t.Errorf("failed save must not replace the stored document, got %+v", got.Records)
	}

	m.SetData([]byte("garbage"))
	if _, err := m.Load(ctx); !errors.Is(err, hv.ErrCorruptVault) {
		t.Errorf("Load() error = %v, want ErrCorruptVault", err)
	}
	if _, err := m.Quarantine(ctx); err != nil {
		t.Fatal(err)
	}
	if q := m.Quarantined(); len(q) != 1 || string(q[0]) != "garbage" {
		t.Errorf("Quarantined() = %q", q)
	}
	if m.Data() != nil {
		t.Error("Quarantine() should clear the stored document")
	}
}
