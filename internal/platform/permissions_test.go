package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
)

func TestChmod(t *testing.T) {
	fsys := afero.NewOsFs()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "test.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(fsys, path, 0755); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0755 {
			t.Errorf("permissions = %o, want %o", perm, 0755)
		}
	}
}

func TestChmodMemFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a/secret", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(fsys, "/a/secret", 0600); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := fsys.Stat("/a/secret")
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want %o", perm, 0600)
		}
	}
}

func TestChmodMissing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no-op on windows")
	}
	if err := Chmod(afero.NewMemMapFs(), "/missing", 0644); err == nil {
		t.Fatal("expected error for missing file")
	}
}
