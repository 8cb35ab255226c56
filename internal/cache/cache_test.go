package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("openai", "gpt-4o-mini", "prompt")
	b := Key("openai", "gpt-4o-mini", "prompt")
	if a != b {
		t.Error("expected identical parts to produce identical keys")
	}

	if Key("ab", "c") == Key("a", "bc") {
		t.Error("expected part boundaries to affect the key")
	}

	if len(a) != len("rumorlens:v1:")+64 {
		t.Errorf("unexpected key length %d", len(a))
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("reply"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "reply" {
		t.Errorf("expected hit with reply, got %q (found %v)", val, found)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replies")
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set(Key("x"), []byte("reply"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(Key("x"))
	if !found || string(val) != "reply" {
		t.Errorf("expected hit with reply, got %q (found %v)", val, found)
	}

	if err := c.Delete(Key("x")); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete(Key("x")); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		t.Errorf("unexpected leftover file %s", e.Name())
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Populate disk only, through a separate instance
	_ = NewDiskCache(dir, time.Hour).Set("k", []byte("from-disk"), 0)

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	val, found := c.Get("k")
	if !found || string(val) != "from-disk" {
		t.Fatalf("expected disk hit, got %q (found %v)", val, found)
	}

	if val, found := c.memory.Get("k"); !found || string(val) != "from-disk" {
		t.Error("expected disk hit to be promoted into memory")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(time.Hour, "").(*MemoryCache); !ok {
		t.Error("expected memory cache when no dir is given")
	}
	if _, ok := New(time.Hour, t.TempDir()).(*LayeredCache); !ok {
		t.Error("expected layered cache when a dir is given")
	}
}
