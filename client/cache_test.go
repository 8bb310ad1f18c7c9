package apiclient

import (
	"bytes"
	"testing"
	"time"
)

func TestCache_ttl(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := newCache(10*time.Second, clock)

	if _, ok := c.get("k"); ok {
		t.Error("get() on empty cache hit")
	}

	c.set("k", []byte("v"))
	if data, ok := c.get("k"); !ok || !bytes.Equal(data, []byte("v")) {
		t.Errorf("get() = %q, %v; want v, true", data, ok)
	}

	now = now.Add(9*time.Second + 999*time.Millisecond)
	if _, ok := c.get("k"); !ok {
		t.Error("entry expired before the TTL")
	}

	now = now.Add(time.Millisecond)
	if _, ok := c.get("k"); ok {
		t.Error("entry survived past the TTL")
	}
}

func TestCache_clear(t *testing.T) {
	c := newCache(time.Minute, nil)
	c.set("a", []byte("1"))
	c.set("b", []byte("2"))

	c.clear()

	for _, key := range []string{"a", "b"} {
		if _, ok := c.get(key); ok {
			t.Errorf("get(%q) hit after clear()", key)
		}
	}
}
