package store

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	fs := NewFileStore(dir)

	files, err := fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected an empty store, got %v", files)
	}

	path, err := fs.Store("python-docs-pdf-a4.zip", strings.NewReader("PK"))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "python-docs-pdf-a4.zip") {
		t.Errorf("unexpected path: %s", path)
	}

	ok, err := fs.Contains("python-docs-pdf-a4.zip")
	if err != nil || !ok {
		t.Errorf("expected file to exist (err=%v)", err)
	}

	r, err := fs.Get("python-docs-pdf-a4.zip")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "PK" {
		t.Errorf("unexpected content: %q", content)
	}

	files, err = fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != "python-docs-pdf-a4.zip" {
		t.Errorf("unexpected listing: %v", files)
	}
}

func TestFileStoreRejectsPaths(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	for _, name := range []string{"", "../escape.zip", "nested/file.zip"} {
		if _, err := fs.Store(name, strings.NewReader("x")); err == nil {
			t.Errorf("expected an error for %q", name)
		}
	}
}
