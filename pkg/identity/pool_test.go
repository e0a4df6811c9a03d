package identity

import (
	"testing"
	"time"
)

func newTestPool(t *testing.T, timeout time.Duration, capacity int) (*Pool, *time.Time) {
	t.Helper()
	pool := NewPool(seededFabricator(7), timeout, capacity)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return now }
	return pool, &now
}

func TestPoolCreateAndGet(t *testing.T) {
	pool, _ := newTestPool(t, 30*time.Minute, 10)

	ident := pool.Create()
	if ident.ID == "" {
		t.Fatal("Expected a non-empty identity id")
	}
	if ident.UserAgent == "" {
		t.Error("Expected a user agent bound at creation")
	}

	got, ok := pool.Get(ident.ID)
	if !ok {
		t.Fatal("Expected identity to be retrievable")
	}
	if got.RequestCount != 1 {
		t.Errorf("Expected request count 1 after first get, got %d", got.RequestCount)
	}

	got, _ = pool.Get(ident.ID)
	if got.RequestCount != 2 {
		t.Errorf("Expected request count 2 after second get, got %d", got.RequestCount)
	}
}

func TestPoolGetUnknownID(t *testing.T) {
	pool, _ := newTestPool(t, 30*time.Minute, 10)

	if _, ok := pool.Get("never-issued"); ok {
		t.Error("Expected not-found for an id that was never issued")
	}
}

func TestPoolExpiry(t *testing.T) {
	pool, now := newTestPool(t, 30*time.Minute, 10)

	ident := pool.Create()

	*now = now.Add(29 * time.Minute)
	if _, ok := pool.Get(ident.ID); !ok {
		t.Error("Expected identity to be live within the session timeout")
	}

	*now = now.Add(31 * time.Minute)
	if _, ok := pool.Get(ident.ID); ok {
		t.Error("Expected identity to expire after idling past the session timeout")
	}
}

func TestPoolCookies(t *testing.T) {
	pool, _ := newTestPool(t, 30*time.Minute, 10)
	ident := pool.Create()

	pool.RecordCookies(ident.ID, []string{
		"csrftoken=abc123; Path=/; Secure",
		"mid=XYZ; Domain=.instagram.com",
	})
	pool.RecordCookies(ident.ID, []string{
		"csrftoken=def456; Path=/; Secure", // last write wins
	})

	header := pool.CookieHeader(ident.ID)
	expected := "csrftoken=def456; Path=/; Secure; mid=XYZ; Domain=.instagram.com"
	if header != expected {
		t.Errorf("Expected cookie header %q, got %q", expected, header)
	}
}

func TestPoolCookiesDoNotLeakAcrossIdentities(t *testing.T) {
	pool, _ := newTestPool(t, 30*time.Minute, 10)

	a := pool.Create()
	b := pool.Create()

	pool.RecordCookies(a.ID, []string{"sessionid=one"})

	if header := pool.CookieHeader(b.ID); header != "" {
		t.Errorf("Expected empty jar for a fresh identity, got %q", header)
	}
}

func TestPoolCapacityEviction(t *testing.T) {
	pool, now := newTestPool(t, 30*time.Minute, 3)

	first := pool.Create()
	*now = now.Add(time.Second)
	pool.Create()
	*now = now.Add(time.Second)
	pool.Create()
	*now = now.Add(time.Second)
	pool.Create() // over capacity, evicts the longest-idle entry

	if pool.Len() != 3 {
		t.Errorf("Expected pool to stay at capacity 3, got %d", pool.Len())
	}
	if _, ok := pool.Get(first.ID); ok {
		t.Error("Expected the oldest identity to be evicted")
	}
}

func TestPoolSweep(t *testing.T) {
	pool, now := newTestPool(t, 30*time.Minute, 10)

	pool.Create()
	pool.Create()
	*now = now.Add(31 * time.Minute)
	fresh := pool.Create()

	if removed := pool.Sweep(); removed != 2 {
		t.Errorf("Expected sweep to remove 2 stale identities, removed %d", removed)
	}
	if _, ok := pool.Get(fresh.ID); !ok {
		t.Error("Expected the fresh identity to survive the sweep")
	}
}
