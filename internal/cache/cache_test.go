package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration, max int) (*DocumentCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, max)
	c.now = clock.Now
	return c, clock
}

func TestDocumentCache_GetSet(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	url := "https://specs.example.test/cos.json"
	c.Set(url, []byte(`{"paths":{}}`))

	got, ok := c.Get(url)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got.Body) != `{"paths":{}}` {
		t.Errorf("unexpected body: %s", got.Body)
	}
	if got.URL != url {
		t.Errorf("expected URL %s, got %s", url, got.URL)
	}
	if got.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestDocumentCache_Miss(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)
	if _, ok := c.Get("https://nope.test"); ok {
		t.Error("expected cache miss for unknown URL")
	}
}

func TestDocumentCache_TTLExpiration(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	c.Set("u", []byte("data"))

	clock.Advance(30 * time.Second)
	if _, ok := c.Get("u"); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	clock.Advance(31 * time.Second)
	if _, ok := c.Get("u"); ok {
		t.Error("expected cache miss after TTL expiration")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestDocumentCache_ZeroTTLDisables(t *testing.T) {
	c := New(0, 10)
	if c.Enabled() {
		t.Fatal("expected zero TTL cache to be disabled")
	}
	c.Set("u", []byte("data"))
	if _, ok := c.Get("u"); ok {
		t.Error("disabled cache must never hit")
	}
	if c.Len() != 0 {
		t.Errorf("disabled cache must not store entries, len=%d", c.Len())
	}
}

func TestDocumentCache_NilSafe(t *testing.T) {
	var c *DocumentCache
	if c.Enabled() {
		t.Error("nil cache must report disabled")
	}
	if _, ok := c.Get("u"); ok {
		t.Error("nil cache must miss")
	}
	c.Set("u", []byte("x"))
	c.InvalidatePrefix("")
	if c.Len() != 0 {
		t.Error("nil cache must be empty")
	}
}

func TestDocumentCache_MaxEntriesEvictsOldest(t *testing.T) {
	c, _ := newTestCache(time.Minute, 3)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))
	c.Set("d", []byte("4"))

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}
}

func TestDocumentCache_OverwriteExistingKey(t *testing.T) {
	c, _ := newTestCache(time.Minute, 2)
	c.Set("a", []byte("old"))
	c.Set("b", []byte("b"))
	c.Set("a", []byte("new"))

	if c.Len() != 2 {
		t.Fatalf("overwrite must not grow cache, len=%d", c.Len())
	}
	got, _ := c.Get("a")
	if string(got.Body) != "new" {
		t.Errorf("expected new body, got %s", got.Body)
	}
}

func TestDocumentCache_InvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)
	c.Set("https://cloud.test/apidocs/a.json", []byte("a"))
	c.Set("https://cloud.test/apidocs/b.json", []byte("b"))
	c.Set("https://other.test/c.json", []byte("c"))

	c.InvalidatePrefix("https://cloud.test/")
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after invalidation, got %d", c.Len())
	}
	if _, ok := c.Get("https://other.test/c.json"); !ok {
		t.Error("expected unrelated entry to survive")
	}

	c.InvalidatePrefix("")
	if c.Len() != 0 {
		t.Errorf("empty prefix must clear cache, len=%d", c.Len())
	}
}

func TestDocumentCache_ThreadSafety(t *testing.T) {
	c := New(time.Minute, 50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("u-%d-%d", n, j%10)
				c.Set(key, []byte("x"))
				c.Get(key)
				if j%25 == 0 {
					c.InvalidatePrefix(fmt.Sprintf("u-%d-", n))
				}
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("cache exceeded max entries: %d", c.Len())
	}
}
