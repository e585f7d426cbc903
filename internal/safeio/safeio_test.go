package safeio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSafeFSAllowsAbsoluteUnderRoot(t *testing.T) {
	dir := t.TempDir()
	fsys, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	p := filepath.Join(fsys.Root(), "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fsys.SafeReadFile(p); err != nil {
		t.Fatalf("SafeReadFile absolute: %v", err)
	}
}

func TestSafeWriteAndList(t *testing.T) {
	fsys, err := NewSafeFS(filepath.Join(t.TempDir(), "docs"))
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fsys.SafeWriteFile("p1/rfp.pdf", []byte("%PDF")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	if err := fsys.SafeWriteFile("p1/annex/a.txt", []byte("annex")); err != nil {
		t.Fatalf("SafeWriteFile nested: %v", err)
	}
	if err := fsys.SafeWriteFile("p1/rfp.pdf", []byte("%PDF-2")); err != nil {
		t.Fatalf("SafeWriteFile overwrite: %v", err)
	}

	got, err := fsys.SafeReadFile("p1/rfp.pdf")
	if err != nil {
		t.Fatalf("SafeReadFile: %v", err)
	}
	if string(got) != "%PDF-2" {
		t.Fatalf("content = %q", got)
	}

	names, err := fsys.SafeListFiles("p1")
	if err != nil {
		t.Fatalf("SafeListFiles: %v", err)
	}
	if want := []string{"annex/a.txt", "rfp.pdf"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	empty, err := fsys.SafeListFiles("missing")
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing dir: %v %v", empty, err)
	}

	if _, err := fsys.SafeReadFile("p1/none.pdf"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestSafeFSRejectsEscapes(t *testing.T) {
	base := t.TempDir()
	fsys, err := NewSafeFS(filepath.Join(base, "root"))
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fsys.SafeWriteFile("../escape.txt", []byte("x")); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := fsys.SafeReadFile(filepath.Join(base, "other.txt")); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("absolute outside root err = %v", err)
	}

	outside := filepath.Join(base, "outside")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(fsys.Root(), "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := fsys.SafeWriteFile("link/x.txt", []byte("x")); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("symlink escape err = %v", err)
	}
}

func TestWriteFileAtomicLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := WriteFileAtomic(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}
