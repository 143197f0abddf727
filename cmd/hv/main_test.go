package main

import (
	"strings"
	"testing"
)

func TestAddRejectsDeleteAndKeep(t *testing.T) {
	rootCmd.SetArgs([]string{"add", "--delete", "--keep", "photo.jpg"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("add with --delete and --keep should fail")
	}
	if !strings.Contains(err.Error(), "delete") || !strings.Contains(err.Error(), "keep") {
		t.Errorf("error = %v, want it to name both flags", err)
	}
}
