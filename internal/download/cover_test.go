package download

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoverCache_SingleFlight(t *testing.T) {
	c := NewCoverCache()
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("cover"), nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrFetch(context.Background(), "album-1", fetch)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	for i, r := range results {
		if string(r) != "cover" {
			t.Errorf("result %d = %q", i, r)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCoverCache_KeysAreIndependent(t *testing.T) {
	c := NewCoverCache()
	ctx := context.Background()

	a, _ := c.GetOrFetch(ctx, "a", func(context.Context) ([]byte, error) { return []byte("A"), nil })
	b, _ := c.GetOrFetch(ctx, "b", func(context.Context) ([]byte, error) { return []byte("B"), nil })

	if string(a) != "A" || string(b) != "B" || c.Len() != 2 {
		t.Errorf("a=%q b=%q len=%d", a, b, c.Len())
	}

	again, _ := c.GetOrFetch(ctx, "a", func(context.Context) ([]byte, error) {
		t.Error("fetch called for cached key")
		return nil, nil
	})
	if string(again) != "A" {
		t.Errorf("cached value = %q", again)
	}
}

func TestCoverCache_ErrorsNotCached(t *testing.T) {
	c := NewCoverCache()
	ctx := context.Background()
	boom := errors.New("boom")

	if _, err := c.GetOrFetch(ctx, "k", func(context.Context) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed fetch was cached")
	}

	data, err := c.GetOrFetch(ctx, "k", func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	if err != nil || string(data) != "ok" {
		t.Errorf("retry = %q, %v", data, err)
	}
}
