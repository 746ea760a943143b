package cache

import (
	"path/filepath"
	"testing"
)

func TestCaches(t *testing.T) {
	bc, err := NewBoltCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer bc.Close()

	caches := map[string]Cache{
		"bolt":   bc,
		"memory": NewMemoryCache(),
	}

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			if _, ok := c.Get("https://peps.python.org/"); ok {
				t.Fatal("unexpected hit on empty cache")
			}

			if err := c.Put("https://peps.python.org/", []byte("<html></html>")); err != nil {
				t.Fatal(err)
			}
			if err := c.Put("https://peps.python.org/pep-0008/", []byte("pep 8")); err != nil {
				t.Fatal(err)
			}

			val, ok := c.Get("https://peps.python.org/")
			if !ok || string(val) != "<html></html>" {
				t.Errorf("unexpected value: %q (ok=%v)", val, ok)
			}

			if !c.Contains("https://peps.python.org/pep-0008/") {
				t.Error("expected key to be present")
			}

			if c.Len() != 2 {
				t.Errorf("unexpected length: %d", c.Len())
			}

			if err := c.Clear(); err != nil {
				t.Fatal(err)
			}

			if c.Len() != 0 || c.Contains("https://peps.python.org/") {
				t.Error("cache not empty after clear")
			}

			// Still usable after a clear.
			if err := c.Put("k", []byte("v")); err != nil {
				t.Fatal(err)
			}
			if !c.Contains("k") {
				t.Error("expected key after clear")
			}
		})
	}
}

func TestBoltCachePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewBoltCache(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("url", []byte("body")); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = NewBoltCache(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	val, ok := c.Get("url")
	if !ok || string(val) != "body" {
		t.Errorf("unexpected value after reopen: %q", val)
	}
}
