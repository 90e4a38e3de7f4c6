package mtime

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStampEqual(t *testing.T) {
	for _, tt := range []struct {
		name string
		a, b Stamp
		want bool
	}{
		{name: "same", a: 1590000000.25, b: 1590000000.25, want: true},
		{name: "different", a: 1590000000.25, b: 1590000001, want: false},
		{name: "missing vs real", a: Missing, b: 1590000000.25, want: false},
		{name: "real vs missing", a: 1590000000.25, b: Missing, want: false},
		{name: "missing vs missing", a: Missing, b: Missing, want: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCacheStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCache()
	before := c.Get(path)
	if before.IsMissing() {
		t.Fatalf("Get(%s) = Missing, want a real stamp", path)
	}

	later := time.Now().Add(5 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(path); !got.Equal(before) {
		t.Errorf("Get after Chtimes = %v, want cached %v", got, before)
	}

	c.Invalidate(path)
	if got := c.Get(path); got.Equal(before) {
		t.Errorf("Get after Invalidate = %v, want a fresh stamp", got)
	}
}

func TestCacheMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")

	c := NewCache()
	if got := c.Get(path); !got.IsMissing() {
		t.Fatalf("Get(%s) = %v, want Missing", path, got)
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// Still the cached answer: one run sees one value.
	if got := c.Get(path); !got.IsMissing() {
		t.Errorf("Get after create = %v, want cached Missing", got)
	}

	c.Invalidate(path)
	if got := c.Get(path); got.IsMissing() {
		t.Errorf("Get after Invalidate = Missing, want a real stamp")
	}
}
