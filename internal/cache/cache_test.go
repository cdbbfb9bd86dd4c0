package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestKey_ContentDerived(t *testing.T) {
	a := Key("tremor at rest")
	b := Key("tremor at rest")
	c := Key("slowness of movement")

	if a != b {
		t.Error("identical text must produce identical keys")
	}
	if a == c {
		t.Error("different text must produce different keys")
	}
	if !strings.HasPrefix(a, "neurobridge:v1:") {
		t.Errorf("key missing namespace prefix: %s", a)
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit for missing key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found := c.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Errorf("get after set: %q, found=%v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("hit after delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set(Key("text"), []byte(`[0.1,0.2]`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found := c.Get(Key("text"))
	if !found || !bytes.Equal(got, []byte(`[0.1,0.2]`)) {
		t.Errorf("get after set: %q, found=%v", got, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expired entry must miss")
	}
}

func TestLayeredCache_PromotesToMemory(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A fresh layered cache over the same directory only has the disk
	// layer; the first Get promotes into memory.
	c2 := NewLayeredCache(time.Minute, dir, time.Minute)
	got, found := c2.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("disk layer miss: %q, found=%v", got, found)
	}
	got, found = c2.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Errorf("promoted entry miss: %q, found=%v", got, found)
	}
}
